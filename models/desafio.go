// models/desafio.go - Challenge System Data Models
package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Desafio is a time-boxed challenge with a numeric objective and a reward.
// Desafios are deactivated after their end date, never physically removed.
type Desafio struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:64"`
	Nome               string    `json:"nome" gorm:"not null;size:100"`
	Descricao          string    `json:"descricao" gorm:"type:text"`
	Tipo               string    `json:"tipo" gorm:"size:30;index"`
	Mes                int       `json:"mes" gorm:"index"`
	Semana             int       `json:"semana" gorm:"index"`
	DataInicio         time.Time `json:"dataInicio"`
	DataFim            time.Time `json:"dataFim"`
	Meta               float64   `json:"meta" gorm:"not null"`
	Unidade            string    `json:"unidade" gorm:"size:30"`
	PontosBase         int       `json:"pontosBase" gorm:"default:0"`
	MultiplicadorBonus float64   `json:"multiplicadorBonus" gorm:"default:1"`
	BadgeEspecial      *string   `json:"badgeEspecial,omitempty" gorm:"size:64"`
	Ativo              bool      `json:"ativo" gorm:"default:true;index"`
	TotalParticipantes int       `json:"totalParticipantes" gorm:"default:0"`
	CriadoEm           time.Time `json:"criadoEm"`
	AtualizadoEm       time.Time `json:"atualizadoEm"`

	// Ranking doubles as the participant roster: one entry per participant,
	// ordered by Posicao. TotalParticipantes must equal len(Ranking).
	Ranking []DesafioRankingEntry `json:"ranking,omitempty" gorm:"foreignKey:DesafioID"`
}

// DesafioRankingEntry is one participant's slot in a challenge ranking.
type DesafioRankingEntry struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	DesafioID  string  `json:"desafioId" gorm:"size:64;not null;uniqueIndex:idx_desafio_user"`
	UserID     string  `json:"userId" gorm:"size:128;not null;uniqueIndex:idx_desafio_user"`
	UserName   string  `json:"userName" gorm:"size:100"`
	UserAvatar string  `json:"userAvatar" gorm:"size:255"`
	Progresso  float64 `json:"progresso" gorm:"default:0"`
	Pontuacao  int     `json:"pontuacao" gorm:"default:0"`
	Posicao    int     `json:"posicao" gorm:"default:0"`
}

// ProgressoDesafio tracks one participant's advancement toward a challenge
// objective. Keyed by "{desafioId}_{userId}"; deleted (not soft-deleted) when
// the participant leaves.
type ProgressoDesafio struct {
	ID                string    `json:"id" gorm:"primaryKey;size:200"`
	DesafioID         string    `json:"desafioId" gorm:"size:64;not null;index"`
	UserID            string    `json:"userId" gorm:"size:128;not null;index"`
	Progresso         float64   `json:"progresso" gorm:"default:0"`
	MetaAtingida      bool      `json:"metaAtingida" gorm:"default:false"`
	PontuacaoAtual    int       `json:"pontuacaoAtual" gorm:"default:0"`
	StreakAtual       int       `json:"streakAtual" gorm:"default:0"`
	MelhorStreak      int       `json:"melhorStreak" gorm:"default:0"`
	UltimaAtualizacao time.Time `json:"ultimaAtualizacao"`
	CriadoEm          time.Time `json:"criadoEm"`

	Historico []ProgressoEvento `json:"historico,omitempty" gorm:"foreignKey:ProgressoID"`
}

// ProgressoEvento mirrors PontoEvento at challenge scope, append-only.
type ProgressoEvento struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ProgressoID   string         `json:"progressoId" gorm:"size:200;not null;index"`
	Acao          string         `json:"acao" gorm:"size:40;not null"`
	Valor         float64        `json:"valor"`
	PontosBase    int            `json:"pontosBase"`
	Multiplicador float64        `json:"multiplicador" gorm:"default:1"`
	Pontos        int            `json:"pontos"`
	Descricao     string         `json:"descricao" gorm:"size:255"`
	Detalhes      datatypes.JSON `json:"detalhes,omitempty" gorm:"type:jsonb"`
	CriadoEm      time.Time      `json:"criadoEm"`
}

// NotificacaoDesafio notification types.
const (
	NotificacaoEntrou        = "entrou_desafio"
	NotificacaoMetaAtingida  = "meta_atingida"
	NotificacaoDesafioFim    = "desafio_encerrado"
)

// NotificacaoDesafio is persisted inside the same commit as the event that
// produced it, so a notification never references a join that did not happen.
type NotificacaoDesafio struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	UserID    string    `json:"userId" gorm:"size:128;not null;index"`
	DesafioID string    `json:"desafioId" gorm:"size:64;not null;index"`
	Tipo      string    `json:"tipo" gorm:"size:40;not null"`
	Mensagem  string    `json:"mensagem" gorm:"size:255"`
	Lida      bool      `json:"lida" gorm:"default:false"`
	CriadoEm  time.Time `json:"criadoEm"`
}

// ProgressoID builds the composite key of a participant's progress record.
func ProgressoID(desafioID, userID string) string {
	return fmt.Sprintf("%s_%s", desafioID, userID)
}

func (Desafio) TableName() string {
	return "desafios"
}

func (DesafioRankingEntry) TableName() string {
	return "desafio_ranking"
}

func (ProgressoDesafio) TableName() string {
	return "progressos_desafios"
}

func (ProgressoEvento) TableName() string {
	return "progresso_eventos"
}

func (NotificacaoDesafio) TableName() string {
	return "notificacoes_desafios"
}
