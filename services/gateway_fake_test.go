package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mrv1409/membrosfitt-sub001/models"
)

// fakeGateway is an in-memory Gateway for the service tests. Atomically
// serializes callers but does not simulate rollback: the services under test
// only write after their validations pass, so tests assert on typed errors
// before any mutation.
type fakeGateway struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users          map[string]*models.UserGamification
	eventos        []models.PontoEvento
	conquistas     []models.Conquista
	userConquistas []models.UserConquista
	userBadges     []models.UserBadge
	protocolos     []models.ProtocoloDesbloqueado
	desafios       map[string]*models.Desafio
	rankings       map[string][]models.DesafioRankingEntry
	progressos     map[string]*models.ProgressoDesafio
	progEventos    []models.ProgressoEvento
	notificacoes   []models.NotificacaoDesafio

	proximoEventoID uint
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		users:      make(map[string]*models.UserGamification),
		desafios:   make(map[string]*models.Desafio),
		rankings:   make(map[string][]models.DesafioRankingEntry),
		progressos: make(map[string]*models.ProgressoDesafio),
	}
}

func (f *fakeGateway) ObterUserGamification(ctx context.Context, userID string) (*models.UserGamification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.users[userID]
	if !ok {
		return nil, ErrNaoEncontrado
	}
	cp := *reg
	return &cp, nil
}

func (f *fakeGateway) ObterUserGamificationParaAtualizar(ctx context.Context, userID string) (*models.UserGamification, error) {
	return f.ObterUserGamification(ctx, userID)
}

func (f *fakeGateway) CriarUserGamification(ctx context.Context, reg *models.UserGamification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *reg
	f.users[reg.UserID] = &cp
	return nil
}

func (f *fakeGateway) SalvarUserGamification(ctx context.Context, reg *models.UserGamification) error {
	return f.CriarUserGamification(ctx, reg)
}

func (f *fakeGateway) UserGamificationPorIDs(ctx context.Context, ids []string) ([]models.UserGamification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserGamification
	for _, id := range ids {
		if reg, ok := f.users[id]; ok {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (f *fakeGateway) AtualizarRankingSemanal(ctx context.Context, userID string, posicao int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reg, ok := f.users[userID]; ok {
		reg.RankingSemanal = posicao
	}
	return nil
}

func (f *fakeGateway) ZerarRankingSemanalExceto(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	manter := make(map[string]bool, len(ids))
	for _, id := range ids {
		manter[id] = true
	}
	for id, reg := range f.users {
		if !manter[id] {
			reg.RankingSemanal = 0
		}
	}
	return nil
}

func (f *fakeGateway) RegistrarPontoEvento(ctx context.Context, ev *models.PontoEvento) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proximoEventoID++
	ev.ID = f.proximoEventoID
	f.eventos = append(f.eventos, *ev)
	return nil
}

func (f *fakeGateway) PontosEventosDoUsuario(ctx context.Context, userID string, limit int) ([]models.PontoEvento, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PontoEvento
	for i := len(f.eventos) - 1; i >= 0; i-- {
		if f.eventos[i].UserID == userID {
			out = append(out, f.eventos[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeGateway) PontosEventosDesde(ctx context.Context, desde time.Time) ([]models.PontoEvento, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PontoEvento
	for _, ev := range f.eventos {
		if !ev.CriadoEm.Before(desde) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CriadoEm.Before(out[j].CriadoEm) })
	return out, nil
}

func (f *fakeGateway) ContarPontosEventos(ctx context.Context, userID string, acao models.Acao) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, ev := range f.eventos {
		if ev.UserID == userID && ev.Acao == acao {
			n++
		}
	}
	return n, nil
}

func (f *fakeGateway) ListarConquistas(ctx context.Context) ([]models.Conquista, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Conquista(nil), f.conquistas...), nil
}

func (f *fakeGateway) ConquistasDoUsuario(ctx context.Context, userID string) ([]models.UserConquista, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserConquista
	for _, uc := range f.userConquistas {
		if uc.UserID == userID {
			out = append(out, uc)
		}
	}
	return out, nil
}

func (f *fakeGateway) DesbloquearConquista(ctx context.Context, uc *models.UserConquista) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userConquistas = append(f.userConquistas, *uc)
	return nil
}

func (f *fakeGateway) BadgesDoUsuario(ctx context.Context, userID string) ([]models.UserBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserBadge
	for _, ub := range f.userBadges {
		if ub.UserID == userID {
			out = append(out, ub)
		}
	}
	return out, nil
}

func (f *fakeGateway) DesbloquearBadge(ctx context.Context, ub *models.UserBadge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existente := range f.userBadges {
		if existente.UserID == ub.UserID && existente.BadgeID == ub.BadgeID {
			return nil
		}
	}
	f.userBadges = append(f.userBadges, *ub)
	return nil
}

func (f *fakeGateway) ProtocolosDoUsuario(ctx context.Context, userID string) ([]models.ProtocoloDesbloqueado, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProtocoloDesbloqueado
	for _, p := range f.protocolos {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeGateway) DesbloquearProtocolo(ctx context.Context, p *models.ProtocoloDesbloqueado) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existente := range f.protocolos {
		if existente.UserID == p.UserID && existente.ProtocoloID == p.ProtocoloID {
			return nil
		}
	}
	f.protocolos = append(f.protocolos, *p)
	return nil
}

func (f *fakeGateway) ObterDesafio(ctx context.Context, id string) (*models.Desafio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.desafios[id]
	if !ok {
		return nil, ErrNaoEncontrado
	}
	cp := *d
	return &cp, nil
}

func (f *fakeGateway) ObterDesafioParaAtualizar(ctx context.Context, id string) (*models.Desafio, error) {
	return f.ObterDesafio(ctx, id)
}

func (f *fakeGateway) ListarDesafios(ctx context.Context, filtro DesafioFiltro) ([]models.Desafio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Desafio
	for _, d := range f.desafios {
		if filtro.SomenteAtivos && !d.Ativo {
			continue
		}
		if filtro.Mes != nil && d.Mes != *filtro.Mes {
			continue
		}
		if filtro.Semana != nil && d.Semana != *filtro.Semana {
			continue
		}
		if filtro.Tipo != "" && d.Tipo != filtro.Tipo {
			continue
		}
		out = append(out, *d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeGateway) CriarDesafio(ctx context.Context, d *models.Desafio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *d
	f.desafios[d.ID] = &cp
	return nil
}

func (f *fakeGateway) SalvarDesafio(ctx context.Context, d *models.Desafio) error {
	return f.CriarDesafio(ctx, d)
}

func (f *fakeGateway) DesafiosExpirados(ctx context.Context, agora time.Time) ([]models.Desafio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Desafio
	for _, d := range f.desafios {
		if d.Ativo && d.DataFim.Before(agora) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeGateway) RankingDoDesafio(ctx context.Context, desafioID string) ([]models.DesafioRankingEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entradas := append([]models.DesafioRankingEntry(nil), f.rankings[desafioID]...)
	sort.SliceStable(entradas, func(i, j int) bool { return entradas[i].Posicao < entradas[j].Posicao })
	return entradas, nil
}

func (f *fakeGateway) CriarRankingEntry(ctx context.Context, e *models.DesafioRankingEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rankings[e.DesafioID] = append(f.rankings[e.DesafioID], *e)
	return nil
}

func (f *fakeGateway) SalvarRankingEntry(ctx context.Context, e *models.DesafioRankingEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entradas := f.rankings[e.DesafioID]
	for i := range entradas {
		if entradas[i].UserID == e.UserID {
			entradas[i] = *e
			return nil
		}
	}
	f.rankings[e.DesafioID] = append(entradas, *e)
	return nil
}

func (f *fakeGateway) RemoverRankingEntry(ctx context.Context, desafioID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entradas := f.rankings[desafioID]
	for i := range entradas {
		if entradas[i].UserID == userID {
			f.rankings[desafioID] = append(entradas[:i], entradas[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeGateway) ObterProgresso(ctx context.Context, id string) (*models.ProgressoDesafio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.progressos[id]
	if !ok {
		return nil, ErrNaoEncontrado
	}
	cp := *p
	return &cp, nil
}

func (f *fakeGateway) ObterProgressoParaAtualizar(ctx context.Context, id string) (*models.ProgressoDesafio, error) {
	return f.ObterProgresso(ctx, id)
}

func (f *fakeGateway) CriarProgresso(ctx context.Context, p *models.ProgressoDesafio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.progressos[p.ID] = &cp
	return nil
}

func (f *fakeGateway) SalvarProgresso(ctx context.Context, p *models.ProgressoDesafio) error {
	return f.CriarProgresso(ctx, p)
}

func (f *fakeGateway) RemoverProgresso(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.progressos, id)
	return nil
}

func (f *fakeGateway) RegistrarProgressoEvento(ctx context.Context, ev *models.ProgressoEvento) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progEventos = append(f.progEventos, *ev)
	return nil
}

func (f *fakeGateway) ProgressosDoUsuario(ctx context.Context, userID string) ([]models.ProgressoDesafio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProgressoDesafio
	for _, p := range f.progressos {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeGateway) CriarNotificacao(ctx context.Context, n *models.NotificacaoDesafio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	f.notificacoes = append(f.notificacoes, *n)
	return nil
}

func (f *fakeGateway) NotificacoesDoUsuario(ctx context.Context, userID string, limit int) ([]models.NotificacaoDesafio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.NotificacaoDesafio
	for i := len(f.notificacoes) - 1; i >= 0; i-- {
		if f.notificacoes[i].UserID == userID {
			out = append(out, f.notificacoes[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Atomically runs fn with all other transactions excluded, matching the
// serialization the row-locked reads give the Postgres gateway.
func (f *fakeGateway) Atomically(ctx context.Context, fn func(tx Gateway) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	return fn(f)
}
