package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mrv1409/membrosfitt-sub001/models"
)

func TestNotificadorEntregaParaAssinante(t *testing.T) {
	n := NewNotificador()
	ch := n.Assinar("user-1")
	defer n.Cancelar("user-1", ch)

	n.Publicar(models.NotificacaoDesafio{UserID: "user-1", Tipo: models.NotificacaoEntrou})

	select {
	case recebida := <-ch:
		assert.Equal(t, models.NotificacaoEntrou, recebida.Tipo)
	case <-time.After(time.Second):
		t.Fatal("notificação não entregue")
	}
}

func TestNotificadorNaoVazaEntreUsuarios(t *testing.T) {
	n := NewNotificador()
	ch := n.Assinar("user-1")
	defer n.Cancelar("user-1", ch)

	n.Publicar(models.NotificacaoDesafio{UserID: "user-2", Tipo: models.NotificacaoEntrou})

	select {
	case <-ch:
		t.Fatal("notificação de outro usuário entregue")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotificadorPublicarSemAssinantesNaoBloqueia(t *testing.T) {
	n := NewNotificador()
	pronto := make(chan struct{})
	go func() {
		n.Publicar(models.NotificacaoDesafio{UserID: "ninguem"})
		close(pronto)
	}()
	select {
	case <-pronto:
	case <-time.After(time.Second):
		t.Fatal("Publicar bloqueou sem assinantes")
	}
}

func TestNotificadorCancelarFechaCanal(t *testing.T) {
	n := NewNotificador()
	ch := n.Assinar("user-1")
	n.Cancelar("user-1", ch)

	_, aberto := <-ch
	require.False(t, aberto)
}
