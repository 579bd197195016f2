package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mrv1409/membrosfitt-sub001/models"
)

func semearUsuario(t *testing.T, gw *fakeGateway, userID string, pontos int, criadoEm time.Time) {
	t.Helper()
	require.NoError(t, gw.CriarUserGamification(context.Background(), &models.UserGamification{
		UserID:   userID,
		Pontos:   pontos,
		Nivel:    NivelPorPontos(pontos),
		CriadoEm: criadoEm,
	}))
}

func semearEvento(t *testing.T, gw *fakeGateway, userID string, pontos int, quando time.Time) {
	t.Helper()
	require.NoError(t, gw.RegistrarPontoEvento(context.Background(), &models.PontoEvento{
		UserID:        userID,
		Acao:          models.AcaoCheckin,
		PontosBase:    pontos,
		Multiplicador: 1,
		Pontos:        pontos,
		CriadoEm:      quando,
	}))
}

func TestObterRankingSemanalJanelaDeSeteDias(t *testing.T) {
	gw := newFakeGateway()
	svc := NewRankingService(gw)
	agora := dia(2026, time.March, 10, 12)
	svc.agora = func() time.Time { return agora }

	semearUsuario(t, gw, "dentro", 5000, dia(2026, time.January, 1, 0))
	semearUsuario(t, gw, "fora", 9000, dia(2026, time.January, 1, 0))

	semearEvento(t, gw, "dentro", 100, agora.Add(-6*24*time.Hour))
	semearEvento(t, gw, "fora", 500, agora.Add(-8*24*time.Hour))

	entradas, err := svc.ObterRankingSemanal(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, entradas, 1, "eventos fora da janela não contam")
	assert.Equal(t, "dentro", entradas[0].UserID)
	assert.Equal(t, 100, entradas[0].Pontos)
	assert.Equal(t, 5000, entradas[0].PontosTotal)
	assert.Equal(t, models.NivelAvancado, entradas[0].Nivel)
	assert.Equal(t, 1, entradas[0].Posicao)
}

func TestObterRankingSemanalOrdenacaoEEmpate(t *testing.T) {
	gw := newFakeGateway()
	svc := NewRankingService(gw)
	agora := dia(2026, time.March, 10, 12)
	svc.agora = func() time.Time { return agora }

	// veterana e novato empatam na semana: o registro mais antigo vence
	semearUsuario(t, gw, "novato", 100, dia(2026, time.March, 1, 0))
	semearUsuario(t, gw, "veterana", 100, dia(2026, time.January, 1, 0))
	semearUsuario(t, gw, "lider", 50, dia(2026, time.February, 1, 0))

	semearEvento(t, gw, "novato", 80, agora.Add(-time.Hour))
	semearEvento(t, gw, "veterana", 80, agora.Add(-2*time.Hour))
	semearEvento(t, gw, "lider", 200, agora.Add(-3*time.Hour))

	entradas, err := svc.ObterRankingSemanal(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entradas, 3)

	assert.Equal(t, "lider", entradas[0].UserID)
	assert.Equal(t, "veterana", entradas[1].UserID, "empate decidido pelo criadoEm mais antigo")
	assert.Equal(t, "novato", entradas[2].UserID)
	assert.Equal(t, []int{1, 2, 3}, []int{entradas[0].Posicao, entradas[1].Posicao, entradas[2].Posicao})
}

func TestObterRankingSemanalSomaEventosDoMesmoUsuario(t *testing.T) {
	gw := newFakeGateway()
	svc := NewRankingService(gw)
	agora := dia(2026, time.March, 10, 12)
	svc.agora = func() time.Time { return agora }

	semearUsuario(t, gw, "user-1", 300, dia(2026, time.January, 1, 0))
	semearEvento(t, gw, "user-1", 100, agora.Add(-time.Hour))
	semearEvento(t, gw, "user-1", 50, agora.Add(-2*time.Hour))
	semearEvento(t, gw, "user-1", 30, agora.Add(-3*24*time.Hour))

	entradas, err := svc.ObterRankingSemanal(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entradas, 1)
	assert.Equal(t, 180, entradas[0].Pontos)
}

func TestObterRankingSemanalLimite(t *testing.T) {
	gw := newFakeGateway()
	svc := NewRankingService(gw)
	agora := dia(2026, time.March, 10, 12)
	svc.agora = func() time.Time { return agora }

	for i, id := range []string{"a", "b", "c", "d"} {
		semearUsuario(t, gw, id, 0, dia(2026, time.January, 1+i, 0))
		semearEvento(t, gw, id, (i+1)*10, agora.Add(-time.Hour))
	}

	entradas, err := svc.ObterRankingSemanal(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entradas, 2)
	assert.Equal(t, "d", entradas[0].UserID)
	assert.Equal(t, "c", entradas[1].UserID)
}

func TestObterRankingSemanalVazio(t *testing.T) {
	svc := NewRankingService(newFakeGateway())
	entradas, err := svc.ObterRankingSemanal(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entradas)
}

func TestObterRankingSemanalNaoMutaRegistros(t *testing.T) {
	gw := newFakeGateway()
	svc := NewRankingService(gw)
	agora := dia(2026, time.March, 10, 12)
	svc.agora = func() time.Time { return agora }

	semearUsuario(t, gw, "user-1", 700, dia(2026, time.January, 1, 0))
	semearEvento(t, gw, "user-1", 100, agora.Add(-time.Hour))

	_, err := svc.ObterRankingSemanal(context.Background(), 10)
	require.NoError(t, err)

	reg, err := gw.ObterUserGamification(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, reg.RankingSemanal, "leitura não grava snapshot")
}

func TestAtualizarSnapshots(t *testing.T) {
	gw := newFakeGateway()
	svc := NewRankingService(gw)
	agora := dia(2026, time.March, 10, 12)
	svc.agora = func() time.Time { return agora }

	semearUsuario(t, gw, "primeiro", 0, dia(2026, time.January, 1, 0))
	semearUsuario(t, gw, "segundo", 0, dia(2026, time.January, 2, 0))
	semearEvento(t, gw, "primeiro", 200, agora.Add(-time.Hour))
	semearEvento(t, gw, "segundo", 100, agora.Add(-time.Hour))

	n, err := svc.AtualizarSnapshots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	primeiro, err := gw.ObterUserGamification(context.Background(), "primeiro")
	require.NoError(t, err)
	assert.Equal(t, 1, primeiro.RankingSemanal)

	segundo, err := gw.ObterUserGamification(context.Background(), "segundo")
	require.NoError(t, err)
	assert.Equal(t, 2, segundo.RankingSemanal)
}

func TestAtualizarSnapshotsZeraQuemSaiuDaJanela(t *testing.T) {
	gw := newFakeGateway()
	svc := NewRankingService(gw)
	agora := dia(2026, time.March, 10, 12)
	svc.agora = func() time.Time { return agora }

	semearUsuario(t, gw, "ativa", 0, dia(2026, time.January, 1, 0))
	semearUsuario(t, gw, "sumido", 0, dia(2026, time.January, 2, 0))
	semearEvento(t, gw, "sumido", 200, agora.Add(-time.Hour))
	semearEvento(t, gw, "ativa", 100, agora.Add(-time.Hour))

	_, err := svc.AtualizarSnapshots(context.Background())
	require.NoError(t, err)

	// oito dias depois só a ativa pontuou de novo
	agora = agora.Add(8 * 24 * time.Hour)
	semearEvento(t, gw, "ativa", 50, agora.Add(-time.Hour))

	n, err := svc.AtualizarSnapshots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ativa, err := gw.ObterUserGamification(context.Background(), "ativa")
	require.NoError(t, err)
	assert.Equal(t, 1, ativa.RankingSemanal)

	sumido, err := gw.ObterUserGamification(context.Background(), "sumido")
	require.NoError(t, err)
	assert.Equal(t, 0, sumido.RankingSemanal, "posição antiga não pode persistir")
}
