// services/notificador.go - In-memory notification fan-out
package services

import (
	"sync"

	"github.com/Mrv1409/membrosfitt-sub001/models"
)

// Notificador fans persisted challenge notifications out to connected
// websocket clients. Delivery is best-effort: the durable copy is the row the
// challenge transaction committed; a slow subscriber drops messages instead
// of blocking the request path.
type Notificador struct {
	mu         sync.RWMutex
	assinantes map[string][]chan models.NotificacaoDesafio
}

func NewNotificador() *Notificador {
	return &Notificador{
		assinantes: make(map[string][]chan models.NotificacaoDesafio),
	}
}

// Assinar registers a subscriber for a user's notifications.
func (n *Notificador) Assinar(userID string) chan models.NotificacaoDesafio {
	ch := make(chan models.NotificacaoDesafio, 16)
	n.mu.Lock()
	n.assinantes[userID] = append(n.assinantes[userID], ch)
	n.mu.Unlock()
	return ch
}

// Cancelar removes a subscriber and closes its channel.
func (n *Notificador) Cancelar(userID string, ch chan models.NotificacaoDesafio) {
	n.mu.Lock()
	defer n.mu.Unlock()

	canais := n.assinantes[userID]
	for i, c := range canais {
		if c == ch {
			n.assinantes[userID] = append(canais[:i], canais[i+1:]...)
			close(c)
			break
		}
	}
	if len(n.assinantes[userID]) == 0 {
		delete(n.assinantes, userID)
	}
}

// Publicar delivers a notification to every subscriber of its user.
func (n *Notificador) Publicar(notificacao models.NotificacaoDesafio) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, ch := range n.assinantes[notificacao.UserID] {
		select {
		case ch <- notificacao:
		default:
			// subscriber too slow, drop
		}
	}
}
