// handlers/notificacoes.go
package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Mrv1409/membrosfitt-sub001/middleware"
	"github.com/Mrv1409/membrosfitt-sub001/services"
	"github.com/Mrv1409/membrosfitt-sub001/utils"
)

// NotificacaoHandler serves the stored notification feed and the live
// websocket stream.
type NotificacaoHandler struct {
	gw          services.Gateway
	notificador *services.Notificador
}

func NewNotificacaoHandler(gw services.Gateway, notificador *services.Notificador) *NotificacaoHandler {
	return &NotificacaoHandler{gw: gw, notificador: notificador}
}

// ListarNotificacoes returns the caller's most recent notifications.
// GET /api/notificacoes?limite=20
func (h *NotificacaoHandler) ListarNotificacoes(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return utils.Erro(c, 401, "Usuário não autenticado")
	}

	limite := 20
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

	notificacoes, err := h.gw.NotificacoesDoUsuario(c.Context(), userID, limite)
	if err != nil {
		return utils.ErroServico(c, err)
	}

	return utils.Sucesso(c, fiber.Map{
		"notificacoes": notificacoes,
		"total":        len(notificacoes),
	})
}

// WebsocketUpgrade gates the upgrade: the token travels as a query
// parameter because browsers cannot set websocket headers.
func (h *NotificacaoHandler) WebsocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		return utils.Erro(c, 401, "Token ausente")
	}
	claims, err := middleware.ParseToken(token)
	if err != nil {
		return utils.Erro(c, 401, "Token inválido ou expirado")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return utils.Erro(c, 401, "Token inválido ou expirado")
	}

	c.Locals("userId", userID)
	return c.Next()
}

// StreamNotificacoes pushes challenge notifications to the member as they
// happen. GET /ws/notificacoes?token=...
func (h *NotificacaoHandler) StreamNotificacoes(conn *websocket.Conn) {
	userID, _ := conn.Locals("userId").(string)
	if userID == "" {
		conn.Close()
		return
	}

	ch := h.notificador.Assinar(userID)
	defer h.notificador.Cancelar(userID, ch)

	// Reader goroutine: we ignore client messages but need the read loop
	// to notice a closed connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case notificacao, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(notificacao); err != nil {
				log.Printf("websocket write para %s falhou: %v", userID, err)
				return
			}
		case <-done:
			return
		}
	}
}
