// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"
	"log"

	"github.com/Mrv1409/membrosfitt-sub001/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations and seeds the catalogs.
func RunMigrations(db *gorm.DB) error {
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.UserGamification{},
		&models.PontoEvento{},
		&models.Conquista{},
		&models.UserConquista{},
		&models.Badge{},
		&models.UserBadge{},
		&models.ProtocoloDesbloqueado{},
		&models.Desafio{},
		&models.DesafioRankingEntry{},
		&models.ProgressoDesafio{},
		&models.ProgressoEvento{},
		&models.NotificacaoDesafio{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	createIndexes(db)

	if err := SeedCatalogos(db); err != nil {
		return fmt.Errorf("failed to seed catalogs: %w", err)
	}

	log.Println("✅ All migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) {
	log.Println("Creating indexes...")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_gamification_pontos ON user_gamification(pontos DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_gamification_nivel ON user_gamification(nivel)")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_pontos_eventos_user_criado ON pontos_eventos(user_id, criado_em DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_pontos_eventos_criado ON pontos_eventos(criado_em DESC)")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_desafios_periodo ON desafios(mes, semana)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_desafios_ativo_fim ON desafios(ativo, data_fim)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_desafio_ranking_posicao ON desafio_ranking(desafio_id, posicao)")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_progressos_user ON progressos_desafios(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notificacoes_user_criado ON notificacoes_desafios(user_id, criado_em DESC)")

	log.Println("✅ Indexes created successfully")
}
