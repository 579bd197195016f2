// services/gateway.go - Persistence Gateway capability interface
package services

import (
	"context"
	"time"

	"github.com/Mrv1409/membrosfitt-sub001/models"
)

// DesafioFiltro narrows a challenge listing. Nil pointer fields are ignored.
type DesafioFiltro struct {
	Mes           *int
	Semana        *int
	Tipo          string
	SomenteAtivos bool
}

// Gateway is the persistence capability set the engine depends on: keyed
// get/save, append-only event writes, set-style roster operations and an
// atomic multi-record commit. Any document store covering these operations is
// substitutable; the GORM/Postgres implementation lives in the database
// package and an in-memory one backs the tests.
//
// Missing records are reported as ErrNaoEncontrado.
type Gateway interface {
	// user gamification
	ObterUserGamification(ctx context.Context, userID string) (*models.UserGamification, error)
	// ObterUserGamificationParaAtualizar locks the record for the duration of
	// the enclosing Atomically block (single-writer-per-user serialization).
	ObterUserGamificationParaAtualizar(ctx context.Context, userID string) (*models.UserGamification, error)
	CriarUserGamification(ctx context.Context, reg *models.UserGamification) error
	SalvarUserGamification(ctx context.Context, reg *models.UserGamification) error
	UserGamificationPorIDs(ctx context.Context, ids []string) ([]models.UserGamification, error)
	AtualizarRankingSemanal(ctx context.Context, userID string, posicao int) error
	// ZerarRankingSemanalExceto clears the snapshot position of every user not
	// listed, so members who fell out of the window stop showing a stale rank.
	ZerarRankingSemanalExceto(ctx context.Context, ids []string) error

	// point history (append-only)
	RegistrarPontoEvento(ctx context.Context, ev *models.PontoEvento) error
	PontosEventosDoUsuario(ctx context.Context, userID string, limit int) ([]models.PontoEvento, error)
	PontosEventosDesde(ctx context.Context, desde time.Time) ([]models.PontoEvento, error)
	ContarPontosEventos(ctx context.Context, userID string, acao models.Acao) (int64, error)

	// conquistas, badges, protocolos
	ListarConquistas(ctx context.Context) ([]models.Conquista, error)
	ConquistasDoUsuario(ctx context.Context, userID string) ([]models.UserConquista, error)
	DesbloquearConquista(ctx context.Context, uc *models.UserConquista) error
	BadgesDoUsuario(ctx context.Context, userID string) ([]models.UserBadge, error)
	DesbloquearBadge(ctx context.Context, ub *models.UserBadge) error
	ProtocolosDoUsuario(ctx context.Context, userID string) ([]models.ProtocoloDesbloqueado, error)
	DesbloquearProtocolo(ctx context.Context, p *models.ProtocoloDesbloqueado) error

	// desafios
	ObterDesafio(ctx context.Context, id string) (*models.Desafio, error)
	ObterDesafioParaAtualizar(ctx context.Context, id string) (*models.Desafio, error)
	ListarDesafios(ctx context.Context, filtro DesafioFiltro) ([]models.Desafio, error)
	CriarDesafio(ctx context.Context, d *models.Desafio) error
	SalvarDesafio(ctx context.Context, d *models.Desafio) error
	DesafiosExpirados(ctx context.Context, agora time.Time) ([]models.Desafio, error)

	// challenge ranking roster
	RankingDoDesafio(ctx context.Context, desafioID string) ([]models.DesafioRankingEntry, error)
	CriarRankingEntry(ctx context.Context, e *models.DesafioRankingEntry) error
	SalvarRankingEntry(ctx context.Context, e *models.DesafioRankingEntry) error
	RemoverRankingEntry(ctx context.Context, desafioID, userID string) error

	// challenge progress
	ObterProgresso(ctx context.Context, id string) (*models.ProgressoDesafio, error)
	// ObterProgressoParaAtualizar locks the record for the duration of the
	// enclosing Atomically block, like its user-gamification counterpart.
	ObterProgressoParaAtualizar(ctx context.Context, id string) (*models.ProgressoDesafio, error)
	CriarProgresso(ctx context.Context, p *models.ProgressoDesafio) error
	SalvarProgresso(ctx context.Context, p *models.ProgressoDesafio) error
	RemoverProgresso(ctx context.Context, id string) error
	RegistrarProgressoEvento(ctx context.Context, ev *models.ProgressoEvento) error
	ProgressosDoUsuario(ctx context.Context, userID string) ([]models.ProgressoDesafio, error)

	// notifications
	CriarNotificacao(ctx context.Context, n *models.NotificacaoDesafio) error
	NotificacoesDoUsuario(ctx context.Context, userID string, limit int) ([]models.NotificacaoDesafio, error)

	// Atomically runs fn against a transactional view of the gateway. All
	// writes inside fn commit together or not at all.
	Atomically(ctx context.Context, fn func(tx Gateway) error) error
}
