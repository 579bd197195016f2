// handlers/desafios.go
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Mrv1409/membrosfitt-sub001/middleware"
	"github.com/Mrv1409/membrosfitt-sub001/services"
	"github.com/Mrv1409/membrosfitt-sub001/utils"
)

// DesafioHandler exposes the challenge lifecycle endpoints.
type DesafioHandler struct {
	desafios *services.DesafioService
}

func NewDesafioHandler(desafios *services.DesafioService) *DesafioHandler {
	return &DesafioHandler{desafios: desafios}
}

// ListarDesafios lists challenges, optionally filtered by month, week or
// type. Authenticated callers get each entry decorated with their own
// progress; anonymous callers get the bare listing.
// GET /api/desafios?mes=8&semana=2&tipo=checkin&ativos=true
func (h *DesafioHandler) ListarDesafios(c *fiber.Ctx) error {
	userID, _ := c.Locals("userId").(string)

	var filtro services.DesafioFiltro
	if v := c.Query("mes"); v != "" {
		mes, err := strconv.Atoi(v)
		if err != nil || mes < 1 || mes > 12 {
			return utils.Erro(c, 400, "Parâmetro mes inválido")
		}
		filtro.Mes = &mes
	}
	if v := c.Query("semana"); v != "" {
		semana, err := strconv.Atoi(v)
		if err != nil || semana < 1 {
			return utils.Erro(c, 400, "Parâmetro semana inválido")
		}
		filtro.Semana = &semana
	}
	filtro.Tipo = c.Query("tipo")
	filtro.SomenteAtivos = c.Query("ativos", "true") != "false"

	desafios, err := h.desafios.ListarDesafios(c.Context(), filtro, userID)
	if err != nil {
		return utils.ErroServico(c, err)
	}

	return utils.Sucesso(c, fiber.Map{
		"desafios": desafios,
		"total":    len(desafios),
	})
}

// ObterDesafio returns one challenge with its ranking board.
// GET /api/desafios/:id
func (h *DesafioHandler) ObterDesafio(c *fiber.Ctx) error {
	desafio, err := h.desafios.ObterDesafio(c.Context(), c.Params("id"))
	if err != nil {
		return utils.ErroServico(c, err)
	}
	return utils.Sucesso(c, fiber.Map{"desafio": desafio})
}

// CriarDesafio registers a new challenge. Admin only.
// POST /api/desafios
func (h *DesafioHandler) CriarDesafio(c *fiber.Ctx) error {
	var req services.CriarDesafioRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Erro(c, 400, "Corpo da requisição inválido")
	}

	desafio, err := h.desafios.CriarDesafio(c.Context(), req)
	if err != nil {
		return utils.ErroServico(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"desafio": desafio,
	})
}

// ParticiparRequest is the optional join body.
type ParticiparRequest struct {
	UserAvatar string `json:"userAvatar"`
}

// Participar joins the caller to a challenge.
// POST /api/desafios/:id/participar
func (h *DesafioHandler) Participar(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return utils.Erro(c, 401, "Usuário não autenticado")
	}

	// corpo opcional: só carrega o avatar exibido no ranking
	var req ParticiparRequest
	_ = c.BodyParser(&req)

	resultado, err := h.desafios.Participar(c.Context(), c.Params("id"), userID, middleware.GetUserName(c), req.UserAvatar)
	if err != nil {
		return utils.ErroServico(c, err)
	}

	return utils.Sucesso(c, fiber.Map{"participacao": resultado})
}

// Sair removes the caller from a challenge, discarding accumulated progress.
// POST /api/desafios/:id/sair
func (h *DesafioHandler) Sair(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return utils.Erro(c, 401, "Usuário não autenticado")
	}

	if err := h.desafios.Sair(c.Context(), c.Params("id"), userID); err != nil {
		return utils.ErroServico(c, err)
	}

	return utils.Sucesso(c, fiber.Map{"mensagem": "Você saiu do desafio"})
}

type AtualizarProgressoRequest struct {
	Valor     *float64 `json:"valor"`
	Acao      string   `json:"acao,omitempty"`
	Descricao string   `json:"descricao,omitempty"`
}

// AtualizarProgresso adds a progress increment to the caller's
// participation and recomputes the challenge ranking.
// PUT /api/desafios/:id/progresso
func (h *DesafioHandler) AtualizarProgresso(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return utils.Erro(c, 401, "Usuário não autenticado")
	}

	var req AtualizarProgressoRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Erro(c, 400, "Corpo da requisição inválido")
	}

	progresso, err := h.desafios.AtualizarProgresso(c.Context(), c.Params("id"), userID, req.Valor, req.Acao, req.Descricao)
	if err != nil {
		return utils.ErroServico(c, err)
	}

	return utils.Sucesso(c, fiber.Map{"progresso": progresso})
}

// ObterProgresso returns the caller's progress in a challenge.
// GET /api/desafios/:id/progresso
func (h *DesafioHandler) ObterProgresso(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return utils.Erro(c, 401, "Usuário não autenticado")
	}

	progresso, err := h.desafios.ObterProgressoUsuario(c.Context(), c.Params("id"), userID)
	if err != nil {
		return utils.ErroServico(c, err)
	}

	return utils.Sucesso(c, fiber.Map{"progresso": progresso})
}

// DesativarDesafio closes a challenge without deleting its history.
// Admin only.
// PUT /api/desafios/:id/desativar
func (h *DesafioHandler) DesativarDesafio(c *fiber.Ctx) error {
	desafio, err := h.desafios.DesativarDesafio(c.Context(), c.Params("id"))
	if err != nil {
		return utils.ErroServico(c, err)
	}
	return utils.Sucesso(c, fiber.Map{"desafio": desafio})
}
