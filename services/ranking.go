// services/ranking.go - Weekly Ranking Aggregator
package services

import (
	"context"
	"sort"
	"time"

	"github.com/Mrv1409/membrosfitt-sub001/models"
)

// JanelaRankingSemanal is the trailing window the weekly ranking covers.
const JanelaRankingSemanal = 7 * 24 * time.Hour

// RankingEntry is one row of the weekly leaderboard.
type RankingEntry struct {
	UserID      string       `json:"userId"`
	Pontos      int          `json:"pontos"`
	PontosTotal int          `json:"pontosTotal"`
	Nivel       models.Nivel `json:"nivel"`
	StreakAtual int          `json:"streakAtual"`
	Posicao     int          `json:"posicao"`
}

// RankingService produces the weekly leaderboard as a stable, read-only
// projection over the point-event history. It never mutates records; the
// rankingSemanal snapshot field is refreshed out-of-band by the scheduler.
type RankingService struct {
	gw    Gateway
	agora func() time.Time
}

func NewRankingService(gw Gateway) *RankingService {
	return &RankingService{gw: gw, agora: time.Now}
}

// ObterRankingSemanal returns the top-limit users ordered by points earned in
// the trailing 7 days, ties broken by earlier record creation. limit <= 0
// returns the full ranking.
func (s *RankingService) ObterRankingSemanal(ctx context.Context, limit int) ([]RankingEntry, error) {
	desde := s.agora().UTC().Add(-JanelaRankingSemanal)

	eventos, err := s.gw.PontosEventosDesde(ctx, desde)
	if err != nil {
		return nil, err
	}

	totais := make(map[string]int)
	ordem := []string{}
	for _, ev := range eventos {
		if _, visto := totais[ev.UserID]; !visto {
			ordem = append(ordem, ev.UserID)
		}
		totais[ev.UserID] += ev.Pontos
	}
	if len(ordem) == 0 {
		return []RankingEntry{}, nil
	}

	registros, err := s.gw.UserGamificationPorIDs(ctx, ordem)
	if err != nil {
		return nil, err
	}
	porID := make(map[string]models.UserGamification, len(registros))
	for _, r := range registros {
		porID[r.UserID] = r
	}

	entradas := make([]RankingEntry, 0, len(ordem))
	for _, id := range ordem {
		reg := porID[id]
		entradas = append(entradas, RankingEntry{
			UserID:      id,
			Pontos:      totais[id],
			PontosTotal: reg.Pontos,
			Nivel:       reg.Nivel,
			StreakAtual: reg.StreakAtual,
		})
	}

	sort.SliceStable(entradas, func(i, j int) bool {
		if entradas[i].Pontos != entradas[j].Pontos {
			return entradas[i].Pontos > entradas[j].Pontos
		}
		ci := porID[entradas[i].UserID].CriadoEm
		cj := porID[entradas[j].UserID].CriadoEm
		return ci.Before(cj)
	})

	if limit > 0 && len(entradas) > limit {
		entradas = entradas[:limit]
	}
	for i := range entradas {
		entradas[i].Posicao = i + 1
	}
	return entradas, nil
}

// AtualizarSnapshots recomputes the full weekly ranking and persists each
// user's position in rankingSemanal. Called by the scheduler, never inline.
func (s *RankingService) AtualizarSnapshots(ctx context.Context) (int, error) {
	entradas, err := s.ObterRankingSemanal(ctx, 0)
	if err != nil {
		return 0, err
	}
	for _, e := range entradas {
		if err := s.gw.AtualizarRankingSemanal(ctx, e.UserID, e.Posicao); err != nil {
			return 0, err
		}
	}

	// Members whose events aged out of the window lose their stale position.
	ids := make([]string, len(entradas))
	for i, e := range entradas {
		ids[i] = e.UserID
	}
	if err := s.gw.ZerarRankingSemanalExceto(ctx, ids); err != nil {
		return 0, err
	}
	return len(entradas), nil
}
