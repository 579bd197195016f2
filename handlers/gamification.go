// handlers/gamification.go
package handlers

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Mrv1409/membrosfitt-sub001/middleware"
	"github.com/Mrv1409/membrosfitt-sub001/models"
	"github.com/Mrv1409/membrosfitt-sub001/services"
	"github.com/Mrv1409/membrosfitt-sub001/utils"
)

// GamificationHandler exposes the point-granting and stats endpoints.
type GamificationHandler struct {
	gamification *services.GamificationService
}

func NewGamificationHandler(gamification *services.GamificationService) *GamificationHandler {
	return &GamificationHandler{gamification: gamification}
}

type AdicionarPontosRequest struct {
	Acao     models.Acao            `json:"acao"`
	Detalhes map[string]interface{} `json:"detalhes,omitempty"`
}

// AdicionarPontos grants points for a recognized member action.
// POST /api/gamification/pontos
func (h *GamificationHandler) AdicionarPontos(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return utils.Erro(c, 401, "Usuário não autenticado")
	}

	var req AdicionarPontosRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Erro(c, 400, "Corpo da requisição inválido")
	}

	resultado, err := h.gamification.AdicionarPontos(c.Context(), userID, req.Acao, req.Detalhes)
	if err != nil {
		return utils.ErroServico(c, err)
	}

	return utils.Sucesso(c, fiber.Map{"resultado": resultado})
}

type TreinoRequest struct {
	FimDeSemana *bool `json:"fimDeSemana,omitempty"`
}

// ProcessarTreino registers a completed workout, the only action that
// advances the daily streak. The weekend flag comes from the body when
// present, otherwise from the server clock.
// POST /api/gamification/treino
func (h *GamificationHandler) ProcessarTreino(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return utils.Erro(c, 401, "Usuário não autenticado")
	}

	var req TreinoRequest
	_ = c.BodyParser(&req)

	fimDeSemana := ehFimDeSemana(time.Now().UTC())
	if req.FimDeSemana != nil {
		fimDeSemana = *req.FimDeSemana
	}

	resultado, err := h.gamification.ProcessarTreinoCompleto(c.Context(), userID, fimDeSemana)
	if err != nil {
		return utils.ErroServico(c, err)
	}

	return utils.Sucesso(c, fiber.Map{"resultado": resultado})
}

func ehFimDeSemana(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ObterEstatisticas returns the member's gamification snapshot with
// recent point history and active challenge progress.
// GET /api/gamification/estatisticas
func (h *GamificationHandler) ObterEstatisticas(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return utils.Erro(c, 401, "Usuário não autenticado")
	}

	stats, err := h.gamification.ObterEstatisticas(c.Context(), userID)
	if err != nil {
		log.Printf("erro ao obter estatísticas de %s: %v", userID, err)
		return utils.ErroServico(c, err)
	}

	return utils.Sucesso(c, fiber.Map{"estatisticas": stats})
}

// ObterRankingSemanal returns the rolling 7-day leaderboard.
// GET /api/gamification/ranking/semanal?limite=50
func (h *GamificationHandler) ObterRankingSemanal(c *fiber.Ctx) error {
	limite := 50
	if v := c.Query("limite"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return utils.Erro(c, 400, "Parâmetro limite inválido")
		}
		if parsed > 100 {
			parsed = 100
		}
		limite = parsed
	}

	ranking, err := h.gamification.ObterRankingSemanal(c.Context(), limite)
	if err != nil {
		return utils.ErroServico(c, err)
	}

	return utils.Sucesso(c, fiber.Map{
		"ranking": ranking,
		"total":   len(ranking),
	})
}
