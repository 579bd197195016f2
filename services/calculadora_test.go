package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mrv1409/membrosfitt-sub001/models"
)

func dia(ano int, mes time.Month, d, hora int) time.Time {
	return time.Date(ano, mes, d, hora, 0, 0, 0, time.UTC)
}

func TestMultiplicadorStreak(t *testing.T) {
	casos := []struct {
		streak int
		mult   float64
	}{
		{0, 1.0},
		{1, 1.0},
		{2, 1.0},
		{3, 1.2},
		{6, 1.2},
		{7, 1.5},
		{13, 1.5},
		{14, 1.75},
		{29, 1.75},
		{30, 2.0},
		{365, 2.0},
	}
	for _, c := range casos {
		assert.Equal(t, c.mult, MultiplicadorStreak(c.streak), "streak %d", c.streak)
	}
}

func TestMultiplicadorStreakMonotonico(t *testing.T) {
	anterior := 0.0
	for streak := 0; streak <= 60; streak++ {
		mult := MultiplicadorStreak(streak)
		assert.GreaterOrEqual(t, mult, anterior, "streak %d", streak)
		anterior = mult
	}
}

func TestNivelPorPontos(t *testing.T) {
	casos := []struct {
		pontos int
		nivel  models.Nivel
	}{
		{0, models.NivelIniciante},
		{999, models.NivelIniciante},
		{1000, models.NivelIntermediario},
		{4999, models.NivelIntermediario},
		{5000, models.NivelAvancado},
		{14999, models.NivelAvancado},
		{15000, models.NivelElite},
		{49999, models.NivelElite},
		{50000, models.NivelLenda},
		{99999, models.NivelLenda},
		{100000, models.NivelMaster},
		{1000000, models.NivelMaster},
	}
	for _, c := range casos {
		assert.Equal(t, c.nivel, NivelPorPontos(c.pontos), "pontos %d", c.pontos)
	}
}

func TestAtualizarStreak(t *testing.T) {
	agora := dia(2026, time.March, 10, 8)

	t.Run("primeiro treino inicia em 1", func(t *testing.T) {
		assert.Equal(t, 1, AtualizarStreak(nil, agora, 0))
	})

	t.Run("mesmo dia não altera", func(t *testing.T) {
		ultimo := dia(2026, time.March, 10, 6)
		assert.Equal(t, 5, AtualizarStreak(&ultimo, agora, 5))
	})

	t.Run("dia seguinte incrementa", func(t *testing.T) {
		ultimo := dia(2026, time.March, 9, 23)
		assert.Equal(t, 6, AtualizarStreak(&ultimo, agora, 5))
	})

	t.Run("virada de dia conta mesmo com menos de 24h", func(t *testing.T) {
		// 23:50 -> 00:10 do dia seguinte: dias de calendário, não horas
		ultimo := time.Date(2026, time.March, 9, 23, 50, 0, 0, time.UTC)
		depois := time.Date(2026, time.March, 10, 0, 10, 0, 0, time.UTC)
		assert.Equal(t, 6, AtualizarStreak(&ultimo, depois, 5))
	})

	t.Run("lacuna de dois dias zera para 1", func(t *testing.T) {
		ultimo := dia(2026, time.March, 8, 8)
		assert.Equal(t, 1, AtualizarStreak(&ultimo, agora, 12))
	})
}

func TestCalcularGrantTreinoStreakSeis(t *testing.T) {
	// Streak 5 ontem vira 6 hoje: 100 * 1.2 = 120.
	ultimo := dia(2026, time.March, 9, 7)
	reg := &models.UserGamification{
		UserID:       "user-1",
		Pontos:       500,
		StreakAtual:  5,
		MelhorStreak: 5,
		UltimoTreino: &ultimo,
	}

	calc := CalcularGrant(reg, models.AcaoTreinoCompleto, ContextoAcao{}, dia(2026, time.March, 10, 7))

	assert.Equal(t, 100, calc.PontosBase)
	assert.Equal(t, 6, calc.StreakAtual)
	assert.Equal(t, 6, calc.MelhorStreak)
	assert.Equal(t, 1.2, calc.Multiplicador)
	assert.Equal(t, 120, calc.Pontos)
}

func TestCalcularGrantTreinoStreakSete(t *testing.T) {
	// Streak chega a 7 num dia de semana: 100 * 1.5 = 150, exato.
	ultimo := dia(2026, time.March, 9, 7)
	reg := &models.UserGamification{
		UserID:       "user-1",
		StreakAtual:  6,
		MelhorStreak: 6,
		UltimoTreino: &ultimo,
	}

	calc := CalcularGrant(reg, models.AcaoTreinoCompleto, ContextoAcao{}, dia(2026, time.March, 10, 7))

	assert.Equal(t, 7, calc.StreakAtual)
	assert.Equal(t, 1.5, calc.Multiplicador)
	assert.Equal(t, 150, calc.Pontos)
}

func TestCalcularGrantStreakSeteComFimDeSemana(t *testing.T) {
	// Streak chega a 7 num sábado: 100 * 1.5 * 1.25 = 187.5 -> 188.
	// Arredondamento único, no final.
	ultimo := dia(2026, time.March, 6, 7)
	reg := &models.UserGamification{
		UserID:       "user-1",
		StreakAtual:  6,
		MelhorStreak: 6,
		UltimoTreino: &ultimo,
	}

	calc := CalcularGrant(reg, models.AcaoTreinoCompleto, ContextoAcao{FimDeSemana: true}, dia(2026, time.March, 7, 9))

	assert.Equal(t, 7, calc.StreakAtual)
	assert.Equal(t, 1.875, calc.Multiplicador)
	assert.Equal(t, 188, calc.Pontos)
}

func TestCalcularGrantAcoesNaoAvancamStreak(t *testing.T) {
	ultimo := dia(2026, time.March, 9, 7)
	reg := &models.UserGamification{
		UserID:       "user-1",
		StreakAtual:  7,
		MelhorStreak: 10,
		UltimoTreino: &ultimo,
	}
	agora := dia(2026, time.March, 10, 12)

	casos := []struct {
		acao   models.Acao
		pontos int
	}{
		{models.AcaoRefeicaoRegistrada, 30}, // 20 * 1.5
		{models.AcaoCheckin, 45},            // 30 * 1.5
		{models.AcaoPesagem, 38},            // 25 * 1.5 = 37.5 -> 38
		{models.AcaoCompartilhamentoSocial, 23}, // 15 * 1.5 = 22.5 -> 23
		{models.AcaoProgressoDesafio, 15},   // 10 * 1.5
	}
	for _, c := range casos {
		calc := CalcularGrant(reg, c.acao, ContextoAcao{}, agora)
		assert.Equal(t, c.pontos, calc.Pontos, "acao %s", c.acao)
		assert.Equal(t, 7, calc.StreakAtual, "acao %s não deve avançar streak", c.acao)
		require.NotNil(t, calc.UltimoTreino)
		assert.Equal(t, ultimo, *calc.UltimoTreino, "acao %s não deve mover ultimoTreino", c.acao)
	}
}

func TestCalcularGrantFimDeSemanaSoParaTreino(t *testing.T) {
	reg := &models.UserGamification{UserID: "user-1", StreakAtual: 0}
	agora := dia(2026, time.March, 7, 9) // sábado

	calc := CalcularGrant(reg, models.AcaoCheckin, ContextoAcao{FimDeSemana: true}, agora)
	assert.Equal(t, 1.0, calc.Multiplicador)
	assert.Equal(t, 30, calc.Pontos)
}

func TestCalcularGrantDeterministico(t *testing.T) {
	ultimo := dia(2026, time.March, 9, 7)
	reg := &models.UserGamification{UserID: "u", Pontos: 980, StreakAtual: 4, MelhorStreak: 9, UltimoTreino: &ultimo}
	agora := dia(2026, time.March, 10, 7)

	a := CalcularGrant(reg, models.AcaoTreinoCompleto, ContextoAcao{}, agora)
	b := CalcularGrant(reg, models.AcaoTreinoCompleto, ContextoAcao{}, agora)
	assert.Equal(t, a, b)
}

func TestCalcularGrantDetectaMudancaDeNivel(t *testing.T) {
	reg := &models.UserGamification{UserID: "u", Pontos: 950}
	calc := CalcularGrant(reg, models.AcaoTreinoCompleto, ContextoAcao{}, dia(2026, time.March, 10, 7))

	require.True(t, calc.NivelMudou)
	assert.Equal(t, models.NivelIntermediario, calc.Nivel)
}

func TestAcaoValida(t *testing.T) {
	assert.True(t, AcaoValida(models.AcaoTreinoCompleto))
	assert.True(t, AcaoValida(models.AcaoProgressoDesafio))
	assert.False(t, AcaoValida(models.AcaoBonusConquista), "bônus interno não é concedível pela API")
	assert.False(t, AcaoValida("acao_inexistente"))
}

func TestIndiceNivel(t *testing.T) {
	assert.Equal(t, 1, IndiceNivel(models.NivelIniciante))
	assert.Equal(t, 4, IndiceNivel(models.NivelElite))
	assert.Equal(t, 6, IndiceNivel(models.NivelMaster))
	assert.Equal(t, 0, IndiceNivel("Inexistente"))
}
