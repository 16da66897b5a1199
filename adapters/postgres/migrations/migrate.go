package migrations

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema holds the ordered DDL statements for the review store
var schema = []string{
	`CREATE TABLE IF NOT EXISTS reviews (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		question TEXT NOT NULL DEFAULT '',
		measure TEXT NOT NULL,
		method TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS studies (
		id UUID PRIMARY KEY,
		review_id UUID NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		year BIGINT,
		subgroup TEXT,
		input_mode TEXT NOT NULL,
		payload JSONB NOT NULL,
		excluded BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_studies_review ON studies(review_id)`,
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id UUID PRIMARY KEY,
		review_id UUID NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
		analysis_key TEXT NOT NULL,
		measure TEXT NOT NULL,
		method TEXT NOT NULL,
		effect DOUBLE PRECISION NOT NULL,
		se DOUBLE PRECISION NOT NULL,
		ci_lower DOUBLE PRECISION NOT NULL,
		ci_upper DOUBLE PRECISION NOT NULL,
		z DOUBLE PRECISION NOT NULL,
		p_value DOUBLE PRECISION NOT NULL,
		q DOUBLE PRECISION NOT NULL,
		df INTEGER NOT NULL,
		q_p_value DOUBLE PRECISION NOT NULL,
		i2 DOUBLE PRECISION NOT NULL,
		tau2 DOUBLE PRECISION NOT NULL,
		k INTEGER NOT NULL,
		weights JSONB NOT NULL DEFAULT '{}',
		excluded JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_review_key ON analysis_runs(review_id, analysis_key, created_at DESC)`,
}

// Up creates the schema if it does not exist
func Up(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i, err)
		}
	}
	return nil
}

// Reset drops every table. Development only.
func Reset(ctx context.Context, db *sqlx.DB) error {
	for _, table := range []string{"analysis_runs", "studies", "reviews"} {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("dropping table %s: %w", table, err)
		}
	}
	return nil
}
