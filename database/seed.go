// database/seed.go - Conquista and Badge catalog seeding
package database

import (
	"log"

	"github.com/Mrv1409/membrosfitt-sub001/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// conquistaCatalogo is the canonical achievement list. Keep the IDs stable
// because unlock rows reference them.
var conquistaCatalogo = []models.Conquista{
	{ID: "primeiro_treino", Nome: "Primeiro Treino", Descricao: "Complete seu primeiro treino", Categoria: models.ConquistaCategoriaTreinos, Requisito: 1, PontosBonus: 50, Icone: "🏁"},
	{ID: "dedicado", Nome: "Dedicado", Descricao: "Complete 50 treinos", Categoria: models.ConquistaCategoriaTreinos, Requisito: 50, PontosBonus: 200, Icone: "💪"},
	{ID: "veterano", Nome: "Veterano", Descricao: "Complete 100 treinos", Categoria: models.ConquistaCategoriaTreinos, Requisito: 100, PontosBonus: 500, Icone: "🏆"},

	{ID: "streak_3", Nome: "Pegando Ritmo", Descricao: "Treine 3 dias seguidos", Categoria: models.ConquistaCategoriaStreak, Requisito: 3, PontosBonus: 30, Icone: "🔥"},
	{ID: "streak_7", Nome: "Semana Perfeita", Descricao: "Treine 7 dias seguidos", Categoria: models.ConquistaCategoriaStreak, Requisito: 7, PontosBonus: 100, Icone: "🔥"},
	{ID: "streak_30", Nome: "Imparável", Descricao: "Treine 30 dias seguidos", Categoria: models.ConquistaCategoriaStreak, Requisito: 30, PontosBonus: 500, Icone: "⚡"},

	{ID: "pontos_1000", Nome: "Primeiro Milhar", Descricao: "Acumule 1.000 pontos", Categoria: models.ConquistaCategoriaPontos, Requisito: 1000, PontosBonus: 100, Icone: "⭐"},
	{ID: "pontos_10000", Nome: "Colecionador", Descricao: "Acumule 10.000 pontos", Categoria: models.ConquistaCategoriaPontos, Requisito: 10000, PontosBonus: 300, Icone: "🌟"},

	{ID: "nivel_avancado", Nome: "Avançado", Descricao: "Alcance o nível Avançado", Categoria: models.ConquistaCategoriaNivel, Requisito: 3, PontosBonus: 200, Icone: "🎖️"},
	{ID: "nivel_elite", Nome: "Elite", Descricao: "Alcance o nível Elite", Categoria: models.ConquistaCategoriaNivel, Requisito: 4, PontosBonus: 500, Icone: "👑"},

	{ID: "primeiro_desafio", Nome: "Desafiante", Descricao: "Conclua seu primeiro desafio", Categoria: models.ConquistaCategoriaDesafios, Requisito: 1, PontosBonus: 150, Icone: "🎯"},
	{ID: "cinco_desafios", Nome: "Caçador de Desafios", Descricao: "Conclua 5 desafios", Categoria: models.ConquistaCategoriaDesafios, Requisito: 5, PontosBonus: 400, Icone: "🏹"},
}

var badgeCatalogo = []models.Badge{
	{ID: "badge_consistencia", Nome: "Consistência", Descricao: "Desafio de consistência concluído", Raridade: models.BadgeComum, Icone: "🥉"},
	{ID: "badge_cardio_master", Nome: "Cardio Master", Descricao: "Desafio de cardio concluído", Raridade: models.BadgeRaro, Icone: "🥈"},
	{ID: "badge_ferro", Nome: "Vontade de Ferro", Descricao: "Desafio mensal concluído", Raridade: models.BadgeEpico, Icone: "🥇"},
	{ID: "badge_lenda_mes", Nome: "Lenda do Mês", Descricao: "Primeiro lugar em um desafio mensal", Raridade: models.BadgeLendario, Icone: "💎"},
}

// SeedCatalogos upserts the conquista and badge catalogs. Idempotent: reruns
// update names and thresholds without touching unlock rows.
func SeedCatalogos(db *gorm.DB) error {
	log.Println("Seeding conquista/badge catalogs...")

	for _, c := range conquistaCatalogo {
		conquista := c
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&conquista).Error; err != nil {
			return err
		}
	}

	for _, b := range badgeCatalogo {
		badge := b
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&badge).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d conquistas and %d badges", len(conquistaCatalogo), len(badgeCatalogo))
	return nil
}
