// services/calculadora.go - Points & Level Calculator (pure)
package services

import (
	"math"
	"time"

	"github.com/Mrv1409/membrosfitt-sub001/models"
)

// Base point values per action kind.
var basePontos = map[models.Acao]int{
	models.AcaoTreinoCompleto:         100,
	models.AcaoRefeicaoRegistrada:     20,
	models.AcaoCheckin:                30,
	models.AcaoPesagem:                25,
	models.AcaoCompartilhamentoSocial: 15,
	models.AcaoProgressoDesafio:       10,
}

// MultiplicadorFimDeSemana applies to treino_completo on Saturday/Sunday,
// after the streak multiplier. Rounding happens once, at the end.
const MultiplicadorFimDeSemana = 1.25

// nivelThresholds maps cumulative points to tiers, ascending.
var nivelThresholds = []struct {
	Minimo int
	Nivel  models.Nivel
}{
	{0, models.NivelIniciante},
	{1000, models.NivelIntermediario},
	{5000, models.NivelAvancado},
	{15000, models.NivelElite},
	{50000, models.NivelLenda},
	{100000, models.NivelMaster},
}

// ContextoAcao carries the optional context of a grant.
type ContextoAcao struct {
	FimDeSemana bool
	Detalhes    map[string]any
}

// ResultadoCalculo is the outcome of one grant computation. Pontos is the
// value granted by this action, not the new total.
type ResultadoCalculo struct {
	PontosBase    int
	Multiplicador float64
	Pontos        int
	StreakAtual   int
	MelhorStreak  int
	UltimoTreino  *time.Time
	Nivel         models.Nivel
	NivelMudou    bool
}

// BasePontosDe returns the base point value of an action.
func BasePontosDe(acao models.Acao) (int, bool) {
	v, ok := basePontos[acao]
	return v, ok
}

// AcaoValida reports whether acao is grantable through the public API.
func AcaoValida(acao models.Acao) bool {
	_, ok := basePontos[acao]
	return ok
}

// MultiplicadorStreak is a monotonic step function of the current streak.
func MultiplicadorStreak(streak int) float64 {
	switch {
	case streak >= 30:
		return 2.0
	case streak >= 14:
		return 1.75
	case streak >= 7:
		return 1.5
	case streak >= 3:
		return 1.2
	default:
		return 1.0
	}
}

// NivelPorPontos derives the tier from cumulative points.
func NivelPorPontos(pontos int) models.Nivel {
	nivel := models.NivelIniciante
	for _, t := range nivelThresholds {
		if pontos >= t.Minimo {
			nivel = t.Nivel
		}
	}
	return nivel
}

// IndiceNivel returns the 1-based position of a tier in the progression.
func IndiceNivel(n models.Nivel) int {
	for i, t := range nivelThresholds {
		if t.Nivel == n {
			return i + 1
		}
	}
	return 0
}

// diasDeCalendario returns how many UTC calendar days separate a from b.
func diasDeCalendario(a, b time.Time) int {
	au, bu := a.UTC(), b.UTC()
	ad := time.Date(au.Year(), au.Month(), au.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(bu.Year(), bu.Month(), bu.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// AtualizarStreak applies the streak window policy (UTC calendar day): the
// same day leaves the streak unchanged, the next day increments it, a larger
// gap resets it to 1, and the first qualifying action starts it at 1.
func AtualizarStreak(ultimoTreino *time.Time, agora time.Time, streakAtual int) int {
	if ultimoTreino == nil {
		return 1
	}
	switch diasDeCalendario(*ultimoTreino, agora) {
	case 0:
		if streakAtual < 1 {
			return 1
		}
		return streakAtual
	case 1:
		return streakAtual + 1
	default:
		return 1
	}
}

// CalcularGrant computes the full outcome of one point grant against the
// current record. Pure: identical inputs always produce identical output.
// Only treino_completo advances the streak and ultimoTreino; every action
// benefits from the multiplier the current streak earns.
func CalcularGrant(reg *models.UserGamification, acao models.Acao, ctx ContextoAcao, agora time.Time) ResultadoCalculo {
	base := basePontos[acao]

	streak := reg.StreakAtual
	melhor := reg.MelhorStreak
	ultimo := reg.UltimoTreino

	if acao == models.AcaoTreinoCompleto {
		streak = AtualizarStreak(reg.UltimoTreino, agora, reg.StreakAtual)
		if streak > melhor {
			melhor = streak
		}
		t := agora
		ultimo = &t
	}

	mult := MultiplicadorStreak(streak)
	if acao == models.AcaoTreinoCompleto && ctx.FimDeSemana {
		mult *= MultiplicadorFimDeSemana
	}

	pontos := int(math.Round(float64(base) * mult))

	nivelAntes := NivelPorPontos(reg.Pontos)
	nivelDepois := NivelPorPontos(reg.Pontos + pontos)

	return ResultadoCalculo{
		PontosBase:    base,
		Multiplicador: mult,
		Pontos:        pontos,
		StreakAtual:   streak,
		MelhorStreak:  melhor,
		UltimoTreino:  ultimo,
		Nivel:         nivelDepois,
		NivelMudou:    nivelDepois != nivelAntes,
	}
}
