// Bulk challenge importer: reads a JSON file of challenge definitions and
// registers them through the same validation path the API uses.
//
// Usage: desafio-importer -arquivo ./seeds/desafios-setembro.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Mrv1409/membrosfitt-sub001/database"
	"github.com/Mrv1409/membrosfitt-sub001/services"
)

func main() {
	arquivo := flag.String("arquivo", "./seeds/desafios.json", "caminho do arquivo JSON com os desafios")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	data, err := os.ReadFile(*arquivo)
	if err != nil {
		log.Fatal("Failed to read JSON file:", err)
	}

	var requests []services.CriarDesafioRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		log.Fatal("Failed to parse JSON:", err)
	}

	fmt.Printf("Found %d challenges\n\n", len(requests))

	gw := database.NewGormGateway(db)
	desafios := services.NewDesafioService(gw, services.NewNotificador())

	ctx := context.Background()
	imported := 0
	for i, req := range requests {
		d, err := desafios.CriarDesafio(ctx, req)
		if err != nil {
			log.Printf("Skipping entry %d (%s): %v\n", i, req.Nome, err)
			continue
		}
		fmt.Printf("Created: %s (%s)\n", d.Nome, d.ID)
		imported++
	}

	fmt.Printf("\n✓ Imported %d/%d challenges\n", imported, len(requests))
}
