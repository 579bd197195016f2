// services/desafios.go - Challenge Manager
package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Mrv1409/membrosfitt-sub001/models"

	"github.com/google/uuid"
)

// DesafioService manages the challenge lifecycle: creation, join, leave,
// progress updates and per-challenge ranking. Join and leave touch several
// records (challenge, roster entry, progress, notification) and always run as
// one atomic commit, so a crash never leaves a member half-joined.
type DesafioService struct {
	gw          Gateway
	notificador *Notificador
	agora       func() time.Time
}

func NewDesafioService(gw Gateway, notificador *Notificador) *DesafioService {
	return &DesafioService{
		gw:          gw,
		notificador: notificador,
		agora:       time.Now,
	}
}

type CriarDesafioRequest struct {
	Nome               string   `json:"nome"`
	Descricao          string   `json:"descricao"`
	Tipo               string   `json:"tipo"`
	Mes                int      `json:"mes"`
	Semana             int      `json:"semana"`
	DataInicio         time.Time `json:"dataInicio"`
	DataFim            time.Time `json:"dataFim"`
	Meta               float64  `json:"meta"`
	Unidade            string   `json:"unidade"`
	PontosBase         int      `json:"pontosBase"`
	MultiplicadorBonus float64  `json:"multiplicadorBonus"`
	BadgeEspecial      *string  `json:"badgeEspecial"`
}

// ResultadoParticipacao is returned by a successful join.
type ResultadoParticipacao struct {
	ProgressoID string  `json:"progressoId"`
	DesafioNome string  `json:"desafioNome"`
	Progresso   float64 `json:"progresso"`
}

// DesafioComProgresso decorates a listing entry with the caller's progress.
type DesafioComProgresso struct {
	models.Desafio
	MeuProgresso *models.ProgressoDesafio `json:"meuProgresso,omitempty"`
}

// CriarDesafio registers a new challenge (administrative action).
func (s *DesafioService) CriarDesafio(ctx context.Context, req CriarDesafioRequest) (*models.Desafio, error) {
	switch {
	case strings.TrimSpace(req.Nome) == "":
		return nil, &ValidationError{Campo: "nome"}
	case req.Tipo == "":
		return nil, &ValidationError{Campo: "tipo"}
	case req.Meta <= 0:
		return nil, &ValidationError{Campo: "objetivo.meta"}
	case req.DataFim.IsZero() || req.DataInicio.IsZero():
		return nil, &ValidationError{Campo: "dataInicio/dataFim"}
	case req.DataFim.Before(req.DataInicio):
		return nil, &ValidationError{Campo: "dataFim"}
	}

	agora := s.agora().UTC()
	mult := req.MultiplicadorBonus
	if mult <= 0 {
		mult = 1
	}

	d := &models.Desafio{
		ID:                 fmt.Sprintf("desafio_%d_%d_%s", req.Mes, req.Semana, uuid.NewString()[:8]),
		Nome:               req.Nome,
		Descricao:          req.Descricao,
		Tipo:               req.Tipo,
		Mes:                req.Mes,
		Semana:             req.Semana,
		DataInicio:         req.DataInicio,
		DataFim:            req.DataFim,
		Meta:               req.Meta,
		Unidade:            req.Unidade,
		PontosBase:         req.PontosBase,
		MultiplicadorBonus: mult,
		BadgeEspecial:      req.BadgeEspecial,
		Ativo:              true,
		CriadoEm:           agora,
		AtualizadoEm:       agora,
	}
	if err := s.gw.CriarDesafio(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Participar joins a user to a challenge: progress record, roster entry,
// participant counter and notification committed together.
func (s *DesafioService) Participar(ctx context.Context, desafioID, userID, userName, userAvatar string) (*ResultadoParticipacao, error) {
	switch {
	case desafioID == "":
		return nil, &ValidationError{Campo: "desafioId"}
	case userID == "":
		return nil, &ValidationError{Campo: "userId"}
	case userName == "":
		return nil, &ValidationError{Campo: "userName"}
	}

	agora := s.agora().UTC()
	var resultado *ResultadoParticipacao
	var notificacao *models.NotificacaoDesafio

	err := s.gw.Atomically(ctx, func(tx Gateway) error {
		d, err := tx.ObterDesafioParaAtualizar(ctx, desafioID)
		if err == ErrNaoEncontrado {
			return &NotFoundError{Recurso: "desafio", ID: desafioID}
		}
		if err != nil {
			return err
		}
		if !d.Ativo {
			return &StateConflictError{Motivo: "desafio inativo"}
		}
		if agora.After(d.DataFim) {
			return &StateConflictError{Motivo: "desafio expirado"}
		}

		progressoID := models.ProgressoID(desafioID, userID)
		if _, err := tx.ObterProgresso(ctx, progressoID); err == nil {
			return &StateConflictError{Motivo: "usuário já participa deste desafio"}
		} else if err != ErrNaoEncontrado {
			return err
		}

		progresso := &models.ProgressoDesafio{
			ID:                progressoID,
			DesafioID:         desafioID,
			UserID:            userID,
			UltimaAtualizacao: agora,
			CriadoEm:          agora,
		}
		if err := tx.CriarProgresso(ctx, progresso); err != nil {
			return err
		}
		if err := tx.RegistrarProgressoEvento(ctx, &models.ProgressoEvento{
			ProgressoID:   progressoID,
			Acao:          "entrou",
			Multiplicador: 1,
			Descricao:     fmt.Sprintf("%s entrou no desafio %s", userName, d.Nome),
			CriadoEm:      agora,
		}); err != nil {
			return err
		}

		if err := tx.CriarRankingEntry(ctx, &models.DesafioRankingEntry{
			DesafioID:  desafioID,
			UserID:     userID,
			UserName:   userName,
			UserAvatar: userAvatar,
			Posicao:    d.TotalParticipantes + 1,
		}); err != nil {
			return err
		}

		d.TotalParticipantes++
		d.AtualizadoEm = agora
		if err := tx.SalvarDesafio(ctx, d); err != nil {
			return err
		}

		notificacao = &models.NotificacaoDesafio{
			ID:        uuid.NewString(),
			UserID:    userID,
			DesafioID: desafioID,
			Tipo:      models.NotificacaoEntrou,
			Mensagem:  fmt.Sprintf("Você entrou no desafio %s", d.Nome),
			CriadoEm:  agora,
		}
		if err := tx.CriarNotificacao(ctx, notificacao); err != nil {
			return err
		}

		resultado = &ResultadoParticipacao{
			ProgressoID: progressoID,
			DesafioNome: d.Nome,
			Progresso:   0,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notificador.Publicar(*notificacao)
	return resultado, nil
}

// Sair removes a participant: deletes the progress record, drops the roster
// entry and recomputes every remaining position, all in one commit.
func (s *DesafioService) Sair(ctx context.Context, desafioID, userID string) error {
	switch {
	case desafioID == "":
		return &ValidationError{Campo: "desafioId"}
	case userID == "":
		return &ValidationError{Campo: "userId"}
	}

	agora := s.agora().UTC()
	return s.gw.Atomically(ctx, func(tx Gateway) error {
		d, err := tx.ObterDesafioParaAtualizar(ctx, desafioID)
		if err == ErrNaoEncontrado {
			return &NotFoundError{Recurso: "desafio", ID: desafioID}
		}
		if err != nil {
			return err
		}

		progressoID := models.ProgressoID(desafioID, userID)
		if _, err := tx.ObterProgresso(ctx, progressoID); err == ErrNaoEncontrado {
			return &StateConflictError{Motivo: "usuário não participa deste desafio"}
		} else if err != nil {
			return err
		}

		if err := tx.RemoverProgresso(ctx, progressoID); err != nil {
			return err
		}
		if err := tx.RemoverRankingEntry(ctx, desafioID, userID); err != nil {
			return err
		}

		restantes, err := tx.RankingDoDesafio(ctx, desafioID)
		if err != nil {
			return err
		}
		for _, e := range reordenarRanking(restantes) {
			entry := e
			if err := tx.SalvarRankingEntry(ctx, &entry); err != nil {
				return err
			}
		}

		d.TotalParticipantes--
		if d.TotalParticipantes < 0 {
			d.TotalParticipantes = 0
		}
		d.AtualizadoEm = agora
		return tx.SalvarDesafio(ctx, d)
	})
}

// AtualizarProgresso adds valor to the participant's cumulative progress.
// Increments are additive by contract, never absolute replacements. The
// metaAtingida flag flips to true the first time progress crosses the goal
// and never reverts.
func (s *DesafioService) AtualizarProgresso(ctx context.Context, desafioID, userID string, valor *float64, acao, descricao string) (*models.ProgressoDesafio, error) {
	switch {
	case desafioID == "":
		return nil, &ValidationError{Campo: "desafioId"}
	case userID == "":
		return nil, &ValidationError{Campo: "userId"}
	case valor == nil:
		return nil, &ValidationError{Campo: "valor"}
	}
	if acao == "" {
		acao = "progresso"
	}

	agora := s.agora().UTC()
	var atualizado *models.ProgressoDesafio
	var notificacao *models.NotificacaoDesafio

	err := s.gw.Atomically(ctx, func(tx Gateway) error {
		// Lock the challenge first so writers touching the same roster
		// serialize; then lock the progress row itself. Without both locks two
		// concurrent increments read the same snapshot and one is lost.
		d, err := tx.ObterDesafioParaAtualizar(ctx, desafioID)
		if err == ErrNaoEncontrado {
			return &NotFoundError{Recurso: "desafio", ID: desafioID}
		}
		if err != nil {
			return err
		}

		p, err := tx.ObterProgressoParaAtualizar(ctx, models.ProgressoID(desafioID, userID))
		if err == ErrNaoEncontrado {
			return &StateConflictError{Motivo: "usuário não participa deste desafio"}
		}
		if err != nil {
			return err
		}

		ultima := p.UltimaAtualizacao
		p.StreakAtual = AtualizarStreak(&ultima, agora, p.StreakAtual)
		if p.StreakAtual > p.MelhorStreak {
			p.MelhorStreak = p.StreakAtual
		}

		base, _ := BasePontosDe(models.AcaoProgressoDesafio)
		mult := MultiplicadorStreak(p.StreakAtual)
		ganho := int(math.Round(float64(base) * mult))

		p.Progresso += *valor
		p.PontuacaoAtual += ganho
		p.UltimaAtualizacao = agora

		if err := tx.RegistrarProgressoEvento(ctx, &models.ProgressoEvento{
			ProgressoID:   p.ID,
			Acao:          acao,
			Valor:         *valor,
			PontosBase:    base,
			Multiplicador: mult,
			Pontos:        ganho,
			Descricao:     descricao,
			CriadoEm:      agora,
		}); err != nil {
			return err
		}

		if !p.MetaAtingida && p.Progresso >= d.Meta {
			p.MetaAtingida = true
			bonus := int(math.Round(float64(d.PontosBase) * d.MultiplicadorBonus))
			if bonus > 0 {
				p.PontuacaoAtual += bonus
				if err := tx.RegistrarProgressoEvento(ctx, &models.ProgressoEvento{
					ProgressoID:   p.ID,
					Acao:          "meta_atingida",
					PontosBase:    d.PontosBase,
					Multiplicador: d.MultiplicadorBonus,
					Pontos:        bonus,
					Descricao:     fmt.Sprintf("Meta de %.0f %s atingida", d.Meta, d.Unidade),
					CriadoEm:      agora,
				}); err != nil {
					return err
				}
			}
			if d.BadgeEspecial != nil && *d.BadgeEspecial != "" {
				if err := tx.DesbloquearBadge(ctx, &models.UserBadge{
					UserID:         userID,
					BadgeID:        *d.BadgeEspecial,
					DesbloqueadoEm: agora,
				}); err != nil {
					return err
				}
			}
			notificacao = &models.NotificacaoDesafio{
				ID:        uuid.NewString(),
				UserID:    userID,
				DesafioID: desafioID,
				Tipo:      models.NotificacaoMetaAtingida,
				Mensagem:  fmt.Sprintf("Meta do desafio %s atingida!", d.Nome),
				CriadoEm:  agora,
			}
			if err := tx.CriarNotificacao(ctx, notificacao); err != nil {
				return err
			}
		}

		if err := tx.SalvarProgresso(ctx, p); err != nil {
			return err
		}

		entradas, err := tx.RankingDoDesafio(ctx, desafioID)
		if err != nil {
			return err
		}
		for i := range entradas {
			if entradas[i].UserID == userID {
				entradas[i].Progresso = p.Progresso
				entradas[i].Pontuacao = p.PontuacaoAtual
			}
		}
		for _, e := range reordenarRanking(entradas) {
			entry := e
			if err := tx.SalvarRankingEntry(ctx, &entry); err != nil {
				return err
			}
		}

		atualizado = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notificacao != nil {
		s.notificador.Publicar(*notificacao)
	}
	return atualizado, nil
}

// ObterProgressoUsuario returns a participant's progress record.
func (s *DesafioService) ObterProgressoUsuario(ctx context.Context, desafioID, userID string) (*models.ProgressoDesafio, error) {
	if desafioID == "" || userID == "" {
		return nil, &ValidationError{Campo: "desafioId/userId"}
	}
	p, err := s.gw.ObterProgresso(ctx, models.ProgressoID(desafioID, userID))
	if err == ErrNaoEncontrado {
		return nil, &NotFoundError{Recurso: "progresso", ID: models.ProgressoID(desafioID, userID)}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ObterDesafio returns a challenge with its ranking roster.
func (s *DesafioService) ObterDesafio(ctx context.Context, desafioID string) (*models.Desafio, error) {
	if desafioID == "" {
		return nil, &ValidationError{Campo: "desafioId"}
	}
	d, err := s.gw.ObterDesafio(ctx, desafioID)
	if err == ErrNaoEncontrado {
		return nil, &NotFoundError{Recurso: "desafio", ID: desafioID}
	}
	if err != nil {
		return nil, err
	}
	ranking, err := s.gw.RankingDoDesafio(ctx, desafioID)
	if err != nil {
		return nil, err
	}
	d.Ranking = ranking
	return d, nil
}

// ListarDesafios lists challenges; when userID is given each entry carries the
// caller's progress. A failed progress lookup logs and omits, it never aborts
// the listing.
func (s *DesafioService) ListarDesafios(ctx context.Context, filtro DesafioFiltro, userID string) ([]DesafioComProgresso, error) {
	desafios, err := s.gw.ListarDesafios(ctx, filtro)
	if err != nil {
		return nil, err
	}

	saida := make([]DesafioComProgresso, 0, len(desafios))
	for _, d := range desafios {
		item := DesafioComProgresso{Desafio: d}
		if userID != "" {
			p, err := s.gw.ObterProgresso(ctx, models.ProgressoID(d.ID, userID))
			if err == nil {
				item.MeuProgresso = p
			} else if err != ErrNaoEncontrado {
				log.Printf("[DESAFIOS] Failed to load progress of %s in %s: %v", userID, d.ID, err)
			}
		}
		saida = append(saida, item)
	}
	return saida, nil
}

// DesativarDesafio flips the ativo flag off (administrative action).
// Challenges are never physically removed.
func (s *DesafioService) DesativarDesafio(ctx context.Context, desafioID string) (*models.Desafio, error) {
	if desafioID == "" {
		return nil, &ValidationError{Campo: "desafioId"}
	}
	d, err := s.gw.ObterDesafio(ctx, desafioID)
	if err == ErrNaoEncontrado {
		return nil, &NotFoundError{Recurso: "desafio", ID: desafioID}
	}
	if err != nil {
		return nil, err
	}
	d.Ativo = false
	d.AtualizadoEm = s.agora().UTC()
	if err := s.gw.SalvarDesafio(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DesativarExpirados deactivates every active challenge past its end date.
// Called by the scheduler.
func (s *DesafioService) DesativarExpirados(ctx context.Context) (int, error) {
	agora := s.agora().UTC()
	expirados, err := s.gw.DesafiosExpirados(ctx, agora)
	if err != nil {
		return 0, err
	}
	for i := range expirados {
		expirados[i].Ativo = false
		expirados[i].AtualizadoEm = agora
		if err := s.gw.SalvarDesafio(ctx, &expirados[i]); err != nil {
			return 0, err
		}
	}
	return len(expirados), nil
}

// reordenarRanking sorts entries by descending score and reassigns 1-based
// positions. The sort is stable: ties keep their previous relative order.
func reordenarRanking(entradas []models.DesafioRankingEntry) []models.DesafioRankingEntry {
	ordenadas := make([]models.DesafioRankingEntry, len(entradas))
	copy(ordenadas, entradas)
	sort.SliceStable(ordenadas, func(i, j int) bool {
		return ordenadas[i].Pontuacao > ordenadas[j].Pontuacao
	})
	for i := range ordenadas {
		ordenadas[i].Posicao = i + 1
	}
	return ordenadas
}
