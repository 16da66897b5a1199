package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gometa/adapters/postgres"
	"gometa/adapters/postgres/migrations"
	"gometa/app"
	"gometa/internal"
	"gometa/internal/config"
	"gometa/internal/errors"
	"gometa/internal/testkit"
	"gometa/models"
	"gometa/ports"
	"gometa/ui"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	reviewRepo := postgres.NewReviewRepository(db)
	studyRepo := postgres.NewStudyRepository(db)
	analysisRepo := postgres.NewAnalysisRepository(db)
	service := app.NewAnalysisService(cfg.Analysis.MaxConcurrent)

	if cfg.Data.DemoData {
		if err := seedDemoData(db, reviewRepo, studyRepo); err != nil {
			logger.Warn("demo data seeding failed: %v", err)
		}
	}

	server := ui.NewServer(cfg, logger, reviewRepo, studyRepo, analysisRepo, service)
	if err := server.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// initDatabase connects to PostgreSQL and brings the schema up to date
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if err := migrations.Up(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "schema migration failed")
	}
	return db, nil
}

// seedDemoData creates a demo review with computable studies so the UI has
// something to show on a fresh install.
func seedDemoData(db *sqlx.DB, reviews ports.ReviewRepository, studies ports.StudyRepository) error {
	ctx := context.Background()

	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM reviews"); err != nil {
		return err
	}
	if count > 0 {
		return nil // only seed an empty store
	}

	review := models.NewReview(
		"Demo: intervention vs control",
		"Does the intervention improve the continuous outcome?",
		"smd", "random",
	)
	if err := reviews.Create(ctx, review); err != nil {
		return err
	}

	kit := testkit.NewTestKit()
	for _, rec := range kit.ContinuousStudies(6) {
		row, err := models.StudyRowFromRecord(review.ID, rec)
		if err != nil {
			return err
		}
		if err := studies.Create(ctx, row); err != nil {
			return err
		}
	}

	log.Printf("seeded demo review %s", review.ID)
	return nil
}
