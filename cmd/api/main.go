// Command api serves a read-only JSON view of persisted analysis results,
// for dashboards and downstream tools that must not touch the main app.
package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gometa/adapters/postgres"
	"gometa/domain/core"
	"gometa/internal/config"
	"gometa/ports"
)

func main() {
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

	reviews := postgres.NewReviewRepository(db)
	analyses := postgres.NewAnalysisRepository(db)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Get("/reviews", listReviews(reviews))
	router.Get("/reviews/{id}/runs", listRuns(analyses))
	router.Get("/reviews/{id}/runs/latest", latestRun(analyses))

	addr := ":" + cfg.Server.APIPort
	log.Printf("results API listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("results API failed: %v", err)
	}
}

func listReviews(repo ports.ReviewRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviews, err := repo.List(r.Context(), 100)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
	}
}

func listRuns(repo ports.AnalysisRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid review id"})
			return
		}
		runs, err := repo.ListByReview(r.Context(), id, 100)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
	}
}

func latestRun(repo ports.AnalysisRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid review id"})
			return
		}
		key := r.URL.Query().Get("key")
		if key == "" {
			key = "main"
		}
		run, err := repo.GetLatest(r.Context(), id, key)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	if core.IsNotFoundError(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	log.Printf("[ERROR] %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
