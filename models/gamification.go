// models/gamification.go - Gamification Data Models
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Nivel is the named tier derived from cumulative points.
type Nivel string

const (
	NivelIniciante     Nivel = "Iniciante"
	NivelIntermediario Nivel = "Intermediário"
	NivelAvancado      Nivel = "Avançado"
	NivelElite         Nivel = "Elite"
	NivelLenda         Nivel = "Lenda"
	NivelMaster        Nivel = "Master"
)

// Acao enumerates the point-granting action kinds.
type Acao string

const (
	AcaoTreinoCompleto         Acao = "treino_completo"
	AcaoRefeicaoRegistrada     Acao = "refeicao_registrada"
	AcaoCheckin                Acao = "checkin"
	AcaoPesagem                Acao = "pesagem"
	AcaoCompartilhamentoSocial Acao = "compartilhamento_social"
	AcaoProgressoDesafio       Acao = "progresso_desafio"
	AcaoBonusConquista         Acao = "bonus_conquista"
	AcaoBonusDesafio           Acao = "bonus_desafio"
)

// UserGamification is the per-user gamification record, keyed by the external
// identity provider's user id. Created lazily on the first gamified action.
type UserGamification struct {
	UserID         string     `json:"userId" gorm:"primaryKey;size:128"`
	Pontos         int        `json:"pontos" gorm:"default:0"`
	Nivel          Nivel      `json:"nivel" gorm:"size:20;default:'Iniciante'"`
	StreakAtual    int        `json:"streakAtual" gorm:"default:0"`
	MelhorStreak   int        `json:"melhorStreak" gorm:"default:0"`
	UltimoTreino   *time.Time `json:"ultimoTreino"`
	RankingSemanal int        `json:"rankingSemanal" gorm:"default:0"`
	CriadoEm       time.Time  `json:"criadoEm"`
	AtualizadoEm   time.Time  `json:"atualizadoEm"`

	// Relationships
	Conquistas []UserConquista         `json:"conquistas,omitempty" gorm:"foreignKey:UserID;references:UserID"`
	Badges     []UserBadge             `json:"badges,omitempty" gorm:"foreignKey:UserID;references:UserID"`
	Protocolos []ProtocoloDesbloqueado `json:"protocolosDesbloqueados,omitempty" gorm:"foreignKey:UserID;references:UserID"`
}

// PontoEvento is one entry of the append-only point-grant history.
// Pontos is the final granted value: round(PontosBase * Multiplicador).
type PontoEvento struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        string         `json:"userId" gorm:"size:128;not null;index"`
	Acao          Acao           `json:"acao" gorm:"size:40;not null;index"`
	PontosBase    int            `json:"pontosBase"`
	Multiplicador float64        `json:"multiplicador" gorm:"default:1"`
	Pontos        int            `json:"pontos"`
	Detalhes      datatypes.JSON `json:"detalhes,omitempty" gorm:"type:jsonb"`
	CriadoEm      time.Time      `json:"criadoEm" gorm:"index"`
}

// ConquistaCategoria is the closed set of achievement trigger categories.
type ConquistaCategoria string

const (
	ConquistaCategoriaPontos   ConquistaCategoria = "pontos"
	ConquistaCategoriaStreak   ConquistaCategoria = "streak"
	ConquistaCategoriaNivel    ConquistaCategoria = "nivel"
	ConquistaCategoriaTreinos  ConquistaCategoria = "treinos"
	ConquistaCategoriaDesafios ConquistaCategoria = "desafios"
)

// Conquista is a catalog entry. Requisito is the numeric threshold the
// category's metric must reach (for nivel, the 1-based index of the tier).
type Conquista struct {
	ID          string             `json:"id" gorm:"primaryKey;size:64"`
	Nome        string             `json:"nome" gorm:"not null;size:100"`
	Descricao   string             `json:"descricao" gorm:"type:text"`
	Categoria   ConquistaCategoria `json:"categoria" gorm:"size:20;not null;index"`
	Requisito   int                `json:"requisito" gorm:"not null"`
	PontosBonus int                `json:"pontosBonus" gorm:"default:0"`
	Icone       string             `json:"icone" gorm:"size:50"`
	CriadoEm    time.Time          `json:"criadoEm"`
}

// UserConquista records an unlocked achievement. The (user, conquista) pair is
// unique so an unlock can never be applied twice.
type UserConquista struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        string     `json:"userId" gorm:"size:128;not null;uniqueIndex:idx_user_conquista"`
	ConquistaID   string     `json:"conquistaId" gorm:"size:64;not null;uniqueIndex:idx_user_conquista"`
	DesbloqueadaEm time.Time `json:"desbloqueadaEm"`

	Conquista *Conquista `json:"conquista,omitempty" gorm:"foreignKey:ConquistaID"`
}

// BadgeRaridade is the closed rarity enumeration.
type BadgeRaridade string

const (
	BadgeComum    BadgeRaridade = "comum"
	BadgeRaro     BadgeRaridade = "raro"
	BadgeEpico    BadgeRaridade = "epico"
	BadgeLendario BadgeRaridade = "lendario"
)

// Badge is a catalog entry for cosmetic badges, mostly awarded by challenges.
type Badge struct {
	ID        string        `json:"id" gorm:"primaryKey;size:64"`
	Nome      string        `json:"nome" gorm:"not null;size:100"`
	Descricao string        `json:"descricao" gorm:"type:text"`
	Raridade  BadgeRaridade `json:"raridade" gorm:"size:20;not null;default:'comum'"`
	Icone     string        `json:"icone" gorm:"size:50"`
	CriadoEm  time.Time     `json:"criadoEm"`
}

type UserBadge struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         string    `json:"userId" gorm:"size:128;not null;uniqueIndex:idx_user_badge"`
	BadgeID        string    `json:"badgeId" gorm:"size:64;not null;uniqueIndex:idx_user_badge"`
	DesbloqueadoEm time.Time `json:"desbloqueadoEm"`

	Badge *Badge `json:"badge,omitempty" gorm:"foreignKey:BadgeID"`
}

// ProtocoloDesbloqueado marks a workout protocol unlocked by reaching a level.
type ProtocoloDesbloqueado struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         string    `json:"userId" gorm:"size:128;not null;uniqueIndex:idx_user_protocolo"`
	ProtocoloID    string    `json:"protocoloId" gorm:"size:64;not null;uniqueIndex:idx_user_protocolo"`
	DesbloqueadoEm time.Time `json:"desbloqueadoEm"`
}

// ProtocolosPorNivel maps each tier to the protocol ids it unlocks.
var ProtocolosPorNivel = map[Nivel][]string{
	NivelIniciante:     {"protocolo_base"},
	NivelIntermediario: {"protocolo_hipertrofia", "protocolo_cardio_2"},
	NivelAvancado:      {"protocolo_forca", "protocolo_hiit"},
	NivelElite:         {"protocolo_elite"},
	NivelLenda:         {"protocolo_lenda"},
	NivelMaster:        {"protocolo_master"},
}

func (UserGamification) TableName() string {
	return "user_gamification"
}

func (PontoEvento) TableName() string {
	return "pontos_eventos"
}

func (Conquista) TableName() string {
	return "conquistas"
}

func (UserConquista) TableName() string {
	return "user_conquistas"
}

func (Badge) TableName() string {
	return "badges"
}

func (UserBadge) TableName() string {
	return "user_badges"
}

func (ProtocoloDesbloqueado) TableName() string {
	return "protocolos_desbloqueados"
}
