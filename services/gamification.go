// services/gamification.go - Gamification Engine
package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Mrv1409/membrosfitt-sub001/models"

	"gorm.io/datatypes"
)

// GamificationService orchestrates point grants: it loads (or lazily creates)
// the user's record, runs the calculator, appends history, persists and
// derives conquistas and protocol unlocks. Every grant is one transactional
// read-modify-write of the user's record; the gateway lock serializes
// concurrent writers for the same user.
type GamificationService struct {
	gw      Gateway
	ranking *RankingService
	agora   func() time.Time
}

func NewGamificationService(gw Gateway, ranking *RankingService) *GamificationService {
	return &GamificationService{
		gw:      gw,
		ranking: ranking,
		agora:   time.Now,
	}
}

// ResultadoGrant is returned to the caller of a point-granting operation.
// Pontos is what THIS action granted, PontosTotal the new cumulative score.
type ResultadoGrant struct {
	Pontos          int                `json:"pontos"`
	ConquistasNovas []models.Conquista `json:"conquistasNovas"`
	NivelMudou      bool               `json:"nivelMudou"`
	Nivel           models.Nivel       `json:"nivel"`
	PontosTotal     int                `json:"pontosTotal"`
	StreakAtual     int                `json:"streakAtual"`
	MelhorStreak    int                `json:"melhorStreak"`
	Multiplicador   float64            `json:"multiplicador"`
}

// Estatisticas is the read-only projection served by obterEstatisticas.
type Estatisticas struct {
	models.UserGamification
	HistoricoPontos      []models.PontoEvento `json:"historicoPontos"`
	DesafiosParticipando []string             `json:"desafiosParticipando"`
}

// AdicionarPontos grants points for an action. A missing user record is
// created with zeroed defaults rather than rejected: the first gamified
// action is the moment a member enters the system (deliberate upsert policy).
func (s *GamificationService) AdicionarPontos(ctx context.Context, userID string, acao models.Acao, detalhes map[string]any) (*ResultadoGrant, error) {
	if userID == "" {
		return nil, &ValidationError{Campo: "userId"}
	}
	if acao == "" {
		return nil, &ValidationError{Campo: "acao"}
	}
	if !AcaoValida(acao) {
		return nil, &ValidationError{Campo: "acao"}
	}

	agora := s.agora().UTC()
	ctxAcao := ContextoAcao{Detalhes: detalhes}
	if v, ok := detalhes["fimDeSemana"].(bool); ok {
		ctxAcao.FimDeSemana = v
	}

	var resultado *ResultadoGrant
	err := s.gw.Atomically(ctx, func(tx Gateway) error {
		reg, err := tx.ObterUserGamificationParaAtualizar(ctx, userID)
		if err == ErrNaoEncontrado {
			reg = &models.UserGamification{
				UserID:   userID,
				Nivel:    models.NivelIniciante,
				CriadoEm: agora,
			}
			if err := tx.CriarUserGamification(ctx, reg); err != nil {
				return err
			}
			// The entry tier is never crossed by a level change, so its
			// protocols are granted when the record is born.
			for _, id := range models.ProtocolosPorNivel[models.NivelIniciante] {
				if err := tx.DesbloquearProtocolo(ctx, &models.ProtocoloDesbloqueado{
					UserID:         userID,
					ProtocoloID:    id,
					DesbloqueadoEm: agora,
				}); err != nil {
					return err
				}
			}
		} else if err != nil {
			return err
		}

		calc := CalcularGrant(reg, acao, ctxAcao, agora)

		var payload datatypes.JSON
		if len(detalhes) > 0 {
			if raw, err := json.Marshal(detalhes); err == nil {
				payload = datatypes.JSON(raw)
			}
		}
		if err := tx.RegistrarPontoEvento(ctx, &models.PontoEvento{
			UserID:        userID,
			Acao:          acao,
			PontosBase:    calc.PontosBase,
			Multiplicador: calc.Multiplicador,
			Pontos:        calc.Pontos,
			Detalhes:      payload,
			CriadoEm:      agora,
		}); err != nil {
			return err
		}

		nivelAntes := reg.Nivel
		reg.Pontos += calc.Pontos
		reg.StreakAtual = calc.StreakAtual
		reg.MelhorStreak = calc.MelhorStreak
		reg.UltimoTreino = calc.UltimoTreino
		reg.AtualizadoEm = agora

		novas, err := s.verificarConquistas(ctx, tx, reg, agora)
		if err != nil {
			return err
		}

		reg.Nivel = NivelPorPontos(reg.Pontos)
		nivelMudou := reg.Nivel != nivelAntes
		if nivelMudou {
			if err := s.desbloquearProtocolos(ctx, tx, reg, nivelAntes, agora); err != nil {
				return err
			}
		}

		if err := tx.SalvarUserGamification(ctx, reg); err != nil {
			return err
		}

		resultado = &ResultadoGrant{
			Pontos:          calc.Pontos,
			ConquistasNovas: novas,
			NivelMudou:      nivelMudou,
			Nivel:           reg.Nivel,
			PontosTotal:     reg.Pontos,
			StreakAtual:     reg.StreakAtual,
			MelhorStreak:    reg.MelhorStreak,
			Multiplicador:   calc.Multiplicador,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resultado, nil
}

// ProcessarTreinoCompleto grants the workout-complete action, threading the
// weekend flag into the grant context.
func (s *GamificationService) ProcessarTreinoCompleto(ctx context.Context, userID string, fimDeSemana bool) (*ResultadoGrant, error) {
	return s.AdicionarPontos(ctx, userID, models.AcaoTreinoCompleto, map[string]any{
		"fimDeSemana": fimDeSemana,
	})
}

// ObterEstatisticas projects the current record without mutating anything.
// A user with no record yet gets a zeroed default, which is not persisted.
func (s *GamificationService) ObterEstatisticas(ctx context.Context, userID string) (*Estatisticas, error) {
	if userID == "" {
		return nil, &ValidationError{Campo: "userId"}
	}

	reg, err := s.gw.ObterUserGamification(ctx, userID)
	if err == ErrNaoEncontrado {
		return &Estatisticas{
			UserGamification: models.UserGamification{
				UserID: userID,
				Nivel:  models.NivelIniciante,
			},
			HistoricoPontos:      []models.PontoEvento{},
			DesafiosParticipando: []string{},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if reg.Conquistas, err = s.gw.ConquistasDoUsuario(ctx, userID); err != nil {
		return nil, err
	}
	if reg.Badges, err = s.gw.BadgesDoUsuario(ctx, userID); err != nil {
		return nil, err
	}
	if reg.Protocolos, err = s.gw.ProtocolosDoUsuario(ctx, userID); err != nil {
		return nil, err
	}

	historico, err := s.gw.PontosEventosDoUsuario(ctx, userID, 20)
	if err != nil {
		return nil, err
	}

	// Best-effort enrichment: a failed progress lookup must not abort stats.
	participando := []string{}
	if progressos, err := s.gw.ProgressosDoUsuario(ctx, userID); err != nil {
		log.Printf("[GAMIFICATION] Failed to load desafios of %s: %v", userID, err)
	} else {
		for _, p := range progressos {
			participando = append(participando, p.DesafioID)
		}
	}

	return &Estatisticas{
		UserGamification:     *reg,
		HistoricoPontos:      historico,
		DesafiosParticipando: participando,
	}, nil
}

// ObterRankingSemanal delegates to the ranking aggregator.
func (s *GamificationService) ObterRankingSemanal(ctx context.Context, limit int) ([]RankingEntry, error) {
	return s.ranking.ObterRankingSemanal(ctx, limit)
}

// verificarConquistas unlocks every catalog entry whose threshold the updated
// record now crosses. Bonus points feed back into the history so the total
// always equals the sum of the events.
func (s *GamificationService) verificarConquistas(ctx context.Context, tx Gateway, reg *models.UserGamification, agora time.Time) ([]models.Conquista, error) {
	catalogo, err := tx.ListarConquistas(ctx)
	if err != nil {
		return nil, err
	}
	desbloqueadas, err := tx.ConquistasDoUsuario(ctx, reg.UserID)
	if err != nil {
		return nil, err
	}
	ja := make(map[string]bool, len(desbloqueadas))
	for _, uc := range desbloqueadas {
		ja[uc.ConquistaID] = true
	}

	novas := []models.Conquista{}
	for _, c := range catalogo {
		if ja[c.ID] {
			continue
		}
		ok, err := s.atendeRequisito(ctx, tx, reg, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if err := tx.DesbloquearConquista(ctx, &models.UserConquista{
			UserID:         reg.UserID,
			ConquistaID:    c.ID,
			DesbloqueadaEm: agora,
		}); err != nil {
			return nil, err
		}

		if c.PontosBonus > 0 {
			if err := tx.RegistrarPontoEvento(ctx, &models.PontoEvento{
				UserID:        reg.UserID,
				Acao:          models.AcaoBonusConquista,
				PontosBase:    c.PontosBonus,
				Multiplicador: 1,
				Pontos:        c.PontosBonus,
				CriadoEm:      agora,
			}); err != nil {
				return nil, err
			}
			reg.Pontos += c.PontosBonus
		}

		novas = append(novas, c)
	}
	return novas, nil
}

func (s *GamificationService) atendeRequisito(ctx context.Context, tx Gateway, reg *models.UserGamification, c models.Conquista) (bool, error) {
	switch c.Categoria {
	case models.ConquistaCategoriaPontos:
		return reg.Pontos >= c.Requisito, nil
	case models.ConquistaCategoriaStreak:
		return reg.MelhorStreak >= c.Requisito, nil
	case models.ConquistaCategoriaNivel:
		return IndiceNivel(NivelPorPontos(reg.Pontos)) >= c.Requisito, nil
	case models.ConquistaCategoriaTreinos:
		total, err := tx.ContarPontosEventos(ctx, reg.UserID, models.AcaoTreinoCompleto)
		if err != nil {
			return false, err
		}
		return total >= int64(c.Requisito), nil
	case models.ConquistaCategoriaDesafios:
		progressos, err := tx.ProgressosDoUsuario(ctx, reg.UserID)
		if err != nil {
			return false, err
		}
		concluidos := 0
		for _, p := range progressos {
			if p.MetaAtingida {
				concluidos++
			}
		}
		return concluidos >= c.Requisito, nil
	}
	return false, nil
}

func (s *GamificationService) desbloquearProtocolos(ctx context.Context, tx Gateway, reg *models.UserGamification, nivelAntes models.Nivel, agora time.Time) error {
	de := IndiceNivel(nivelAntes)
	ate := IndiceNivel(reg.Nivel)
	if ate <= de {
		return nil
	}

	for nivel, protocolos := range models.ProtocolosPorNivel {
		idx := IndiceNivel(nivel)
		if idx <= de || idx > ate {
			continue
		}
		for _, id := range protocolos {
			if err := tx.DesbloquearProtocolo(ctx, &models.ProtocoloDesbloqueado{
				UserID:         reg.UserID,
				ProtocoloID:    id,
				DesbloqueadoEm: agora,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
