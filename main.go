// main.go
package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/Mrv1409/membrosfitt-sub001/database"
	"github.com/Mrv1409/membrosfitt-sub001/handlers"
	"github.com/Mrv1409/membrosfitt-sub001/handlers/admin"
	"github.com/Mrv1409/membrosfitt-sub001/middleware"
	"github.com/Mrv1409/membrosfitt-sub001/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	db, err := database.Connect()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Wire services
	gw := database.NewGormGateway(db)
	notificador := services.NewNotificador()
	ranking := services.NewRankingService(gw)
	gamification := services.NewGamificationService(gw, ranking)
	desafios := services.NewDesafioService(gw, notificador)

	scheduler, err := services.NewScheduler(ranking, desafios)
	if err != nil {
		log.Fatal("Failed to create scheduler:", err)
	}
	if err := scheduler.Start(
		envDuration("RANKING_REFRESH_INTERVAL_MIN", 15)*time.Minute,
		envDuration("DESAFIO_SWEEP_INTERVAL_MIN", 60)*time.Minute,
	); err != nil {
		log.Fatal("Failed to start scheduler:", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
	}()

	gamificationHandler := handlers.NewGamificationHandler(gamification)
	desafioHandler := handlers.NewDesafioHandler(desafios)
	notificacaoHandler := handlers.NewNotificacaoHandler(gw, notificador)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware)

	// API routes
	api := app.Group("/api")

	// Gamification engine
	gamif := api.Group("/gamification")
	gamif.Get("/ranking/semanal", gamificationHandler.ObterRankingSemanal)
	gamif.Post("/pontos", middleware.AuthMiddleware, middleware.WriteRateLimitMiddleware, gamificationHandler.AdicionarPontos)
	gamif.Post("/treino", middleware.AuthMiddleware, middleware.WriteRateLimitMiddleware, gamificationHandler.ProcessarTreino)
	gamif.Get("/estatisticas", middleware.AuthMiddleware, gamificationHandler.ObterEstatisticas)

	// Challenges
	desafioGroup := api.Group("/desafios")
	desafioGroup.Get("/", middleware.OptionalAuthMiddleware, desafioHandler.ListarDesafios)
	desafioGroup.Get("/:id", desafioHandler.ObterDesafio)
	desafioGroup.Post("/:id/participar", middleware.AuthMiddleware, desafioHandler.Participar)
	desafioGroup.Post("/:id/sair", middleware.AuthMiddleware, desafioHandler.Sair)
	desafioGroup.Put("/:id/progresso", middleware.AuthMiddleware, middleware.WriteRateLimitMiddleware, desafioHandler.AtualizarProgresso)
	desafioGroup.Get("/:id/progresso", middleware.AuthMiddleware, desafioHandler.ObterProgresso)

	// Notifications
	api.Get("/notificacoes", middleware.AuthMiddleware, notificacaoHandler.ListarNotificacoes)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)

	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)

	api.Post("/desafios", middleware.AdminAuthMiddleware, desafioHandler.CriarDesafio)
	api.Put("/desafios/:id/desativar", middleware.AdminAuthMiddleware, desafioHandler.DesativarDesafio)

	// Live notification stream
	app.Get("/ws/notificacoes", notificacaoHandler.WebsocketUpgrade, websocket.New(notificacaoHandler.StreamNotificacoes))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("APP_ENV") == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envDuration(key string, defaultMin int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return time.Duration(parsed)
		}
	}
	return time.Duration(defaultMin)
}
