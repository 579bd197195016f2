// database/gateway.go - GORM implementation of the persistence gateway
package database

import (
	"context"
	"errors"
	"time"

	"github.com/Mrv1409/membrosfitt-sub001/models"
	"github.com/Mrv1409/membrosfitt-sub001/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGateway implements services.Gateway over PostgreSQL. Atomically maps to
// a database transaction; ParaAtualizar reads take a row lock so concurrent
// grants for the same user serialize instead of losing updates.
type GormGateway struct {
	db *gorm.DB
}

func NewGormGateway(db *gorm.DB) *GormGateway {
	return &GormGateway{db: db}
}

func traduzErro(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNaoEncontrado
	}
	return err
}

// ---------- user gamification ----------

func (g *GormGateway) ObterUserGamification(ctx context.Context, userID string) (*models.UserGamification, error) {
	var reg models.UserGamification
	if err := g.db.WithContext(ctx).First(&reg, "user_id = ?", userID).Error; err != nil {
		return nil, traduzErro(err)
	}
	return &reg, nil
}

func (g *GormGateway) ObterUserGamificationParaAtualizar(ctx context.Context, userID string) (*models.UserGamification, error) {
	var reg models.UserGamification
	if err := g.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&reg, "user_id = ?", userID).Error; err != nil {
		return nil, traduzErro(err)
	}
	return &reg, nil
}

func (g *GormGateway) CriarUserGamification(ctx context.Context, reg *models.UserGamification) error {
	return g.db.WithContext(ctx).Create(reg).Error
}

func (g *GormGateway) SalvarUserGamification(ctx context.Context, reg *models.UserGamification) error {
	return g.db.WithContext(ctx).Save(reg).Error
}

func (g *GormGateway) UserGamificationPorIDs(ctx context.Context, ids []string) ([]models.UserGamification, error) {
	var regs []models.UserGamification
	if err := g.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

func (g *GormGateway) AtualizarRankingSemanal(ctx context.Context, userID string, posicao int) error {
	return g.db.WithContext(ctx).Model(&models.UserGamification{}).
		Where("user_id = ?", userID).
		Update("ranking_semanal", posicao).Error
}

func (g *GormGateway) ZerarRankingSemanalExceto(ctx context.Context, ids []string) error {
	q := g.db.WithContext(ctx).Model(&models.UserGamification{}).
		Where("ranking_semanal <> 0")
	if len(ids) > 0 {
		q = q.Where("user_id NOT IN ?", ids)
	}
	return q.Update("ranking_semanal", 0).Error
}

// ---------- point history ----------

func (g *GormGateway) RegistrarPontoEvento(ctx context.Context, ev *models.PontoEvento) error {
	return g.db.WithContext(ctx).Create(ev).Error
}

func (g *GormGateway) PontosEventosDoUsuario(ctx context.Context, userID string, limit int) ([]models.PontoEvento, error) {
	eventos := []models.PontoEvento{}
	q := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("criado_em DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&eventos).Error; err != nil {
		return nil, err
	}
	return eventos, nil
}

func (g *GormGateway) PontosEventosDesde(ctx context.Context, desde time.Time) ([]models.PontoEvento, error) {
	eventos := []models.PontoEvento{}
	if err := g.db.WithContext(ctx).
		Where("criado_em >= ?", desde).
		Order("criado_em ASC").
		Find(&eventos).Error; err != nil {
		return nil, err
	}
	return eventos, nil
}

func (g *GormGateway) ContarPontosEventos(ctx context.Context, userID string, acao models.Acao) (int64, error) {
	var total int64
	err := g.db.WithContext(ctx).Model(&models.PontoEvento{}).
		Where("user_id = ? AND acao = ?", userID, acao).
		Count(&total).Error
	return total, err
}

// ---------- conquistas, badges, protocolos ----------

func (g *GormGateway) ListarConquistas(ctx context.Context) ([]models.Conquista, error) {
	var catalogo []models.Conquista
	if err := g.db.WithContext(ctx).Order("id").Find(&catalogo).Error; err != nil {
		return nil, err
	}
	return catalogo, nil
}

func (g *GormGateway) ConquistasDoUsuario(ctx context.Context, userID string) ([]models.UserConquista, error) {
	desbloqueadas := []models.UserConquista{}
	if err := g.db.WithContext(ctx).
		Preload("Conquista").
		Where("user_id = ?", userID).
		Order("desbloqueada_em DESC").
		Find(&desbloqueadas).Error; err != nil {
		return nil, err
	}
	return desbloqueadas, nil
}

func (g *GormGateway) DesbloquearConquista(ctx context.Context, uc *models.UserConquista) error {
	return g.db.WithContext(ctx).Create(uc).Error
}

func (g *GormGateway) BadgesDoUsuario(ctx context.Context, userID string) ([]models.UserBadge, error) {
	badges := []models.UserBadge{}
	if err := g.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("desbloqueado_em DESC").
		Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func (g *GormGateway) DesbloquearBadge(ctx context.Context, ub *models.UserBadge) error {
	// idempotent: re-earning the same badge is not an error
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(ub).Error
}

func (g *GormGateway) ProtocolosDoUsuario(ctx context.Context, userID string) ([]models.ProtocoloDesbloqueado, error) {
	protocolos := []models.ProtocoloDesbloqueado{}
	if err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("desbloqueado_em").
		Find(&protocolos).Error; err != nil {
		return nil, err
	}
	return protocolos, nil
}

func (g *GormGateway) DesbloquearProtocolo(ctx context.Context, p *models.ProtocoloDesbloqueado) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p).Error
}

// ---------- desafios ----------

func (g *GormGateway) ObterDesafio(ctx context.Context, id string) (*models.Desafio, error) {
	var d models.Desafio
	if err := g.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, traduzErro(err)
	}
	return &d, nil
}

func (g *GormGateway) ObterDesafioParaAtualizar(ctx context.Context, id string) (*models.Desafio, error) {
	var d models.Desafio
	if err := g.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, "id = ?", id).Error; err != nil {
		return nil, traduzErro(err)
	}
	return &d, nil
}

func (g *GormGateway) ListarDesafios(ctx context.Context, filtro services.DesafioFiltro) ([]models.Desafio, error) {
	q := g.db.WithContext(ctx).Model(&models.Desafio{})
	if filtro.Mes != nil {
		q = q.Where("mes = ?", *filtro.Mes)
	}
	if filtro.Semana != nil {
		q = q.Where("semana = ?", *filtro.Semana)
	}
	if filtro.Tipo != "" {
		q = q.Where("tipo = ?", filtro.Tipo)
	}
	if filtro.SomenteAtivos {
		q = q.Where("ativo = ?", true)
	}

	desafios := []models.Desafio{}
	if err := q.Order("data_inicio DESC").Find(&desafios).Error; err != nil {
		return nil, err
	}
	return desafios, nil
}

func (g *GormGateway) CriarDesafio(ctx context.Context, d *models.Desafio) error {
	return g.db.WithContext(ctx).Create(d).Error
}

func (g *GormGateway) SalvarDesafio(ctx context.Context, d *models.Desafio) error {
	return g.db.WithContext(ctx).Omit("Ranking").Save(d).Error
}

func (g *GormGateway) DesafiosExpirados(ctx context.Context, agora time.Time) ([]models.Desafio, error) {
	expirados := []models.Desafio{}
	if err := g.db.WithContext(ctx).
		Where("ativo = ? AND data_fim < ?", true, agora).
		Find(&expirados).Error; err != nil {
		return nil, err
	}
	return expirados, nil
}

// ---------- challenge ranking roster ----------

func (g *GormGateway) RankingDoDesafio(ctx context.Context, desafioID string) ([]models.DesafioRankingEntry, error) {
	entradas := []models.DesafioRankingEntry{}
	if err := g.db.WithContext(ctx).
		Where("desafio_id = ?", desafioID).
		Order("posicao ASC").
		Find(&entradas).Error; err != nil {
		return nil, err
	}
	return entradas, nil
}

func (g *GormGateway) CriarRankingEntry(ctx context.Context, e *models.DesafioRankingEntry) error {
	return g.db.WithContext(ctx).Create(e).Error
}

func (g *GormGateway) SalvarRankingEntry(ctx context.Context, e *models.DesafioRankingEntry) error {
	return g.db.WithContext(ctx).Save(e).Error
}

func (g *GormGateway) RemoverRankingEntry(ctx context.Context, desafioID, userID string) error {
	return g.db.WithContext(ctx).
		Where("desafio_id = ? AND user_id = ?", desafioID, userID).
		Delete(&models.DesafioRankingEntry{}).Error
}

// ---------- challenge progress ----------

func (g *GormGateway) ObterProgresso(ctx context.Context, id string) (*models.ProgressoDesafio, error) {
	var p models.ProgressoDesafio
	if err := g.db.WithContext(ctx).
		Preload("Historico", func(db *gorm.DB) *gorm.DB {
			return db.Order("criado_em ASC")
		}).
		First(&p, "id = ?", id).Error; err != nil {
		return nil, traduzErro(err)
	}
	return &p, nil
}

func (g *GormGateway) ObterProgressoParaAtualizar(ctx context.Context, id string) (*models.ProgressoDesafio, error) {
	var p models.ProgressoDesafio
	if err := g.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error; err != nil {
		return nil, traduzErro(err)
	}
	return &p, nil
}

func (g *GormGateway) CriarProgresso(ctx context.Context, p *models.ProgressoDesafio) error {
	return g.db.WithContext(ctx).Create(p).Error
}

func (g *GormGateway) SalvarProgresso(ctx context.Context, p *models.ProgressoDesafio) error {
	return g.db.WithContext(ctx).Omit("Historico").Save(p).Error
}

func (g *GormGateway) RemoverProgresso(ctx context.Context, id string) error {
	if err := g.db.WithContext(ctx).
		Where("progresso_id = ?", id).
		Delete(&models.ProgressoEvento{}).Error; err != nil {
		return err
	}
	return g.db.WithContext(ctx).Delete(&models.ProgressoDesafio{}, "id = ?", id).Error
}

func (g *GormGateway) RegistrarProgressoEvento(ctx context.Context, ev *models.ProgressoEvento) error {
	return g.db.WithContext(ctx).Create(ev).Error
}

func (g *GormGateway) ProgressosDoUsuario(ctx context.Context, userID string) ([]models.ProgressoDesafio, error) {
	progressos := []models.ProgressoDesafio{}
	if err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("criado_em DESC").
		Find(&progressos).Error; err != nil {
		return nil, err
	}
	return progressos, nil
}

// ---------- notifications ----------

func (g *GormGateway) CriarNotificacao(ctx context.Context, n *models.NotificacaoDesafio) error {
	return g.db.WithContext(ctx).Create(n).Error
}

func (g *GormGateway) NotificacoesDoUsuario(ctx context.Context, userID string, limit int) ([]models.NotificacaoDesafio, error) {
	notificacoes := []models.NotificacaoDesafio{}
	q := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("criado_em DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&notificacoes).Error; err != nil {
		return nil, err
	}
	return notificacoes, nil
}

// ---------- transactions ----------

func (g *GormGateway) Atomically(ctx context.Context, fn func(tx services.Gateway) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormGateway{db: tx})
	})
}
