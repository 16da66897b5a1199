// Command migrate creates (or with -reset, drops and recreates) the
// review store schema.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gometa/adapters/postgres/migrations"
	"gometa/internal/config"
)

func main() {
	reset := flag.Bool("reset", false, "drop all tables before migrating")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if *reset {
		log.Println("resetting database schema")
		if err := migrations.Reset(ctx, db); err != nil {
			log.Fatalf("reset failed: %v", err)
		}
	}
	if err := migrations.Up(ctx, db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("schema is up to date")
}
