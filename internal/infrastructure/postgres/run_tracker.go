package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tcgvault/backend/internal/domain"
)

// RunTracker records scraper run lifecycles in the scraper_runs table.
type RunTracker struct {
	pool *pgxpool.Pool
}

// NewRunTracker creates a tracker on the given database.
func NewRunTracker(db *DB) *RunTracker {
	return &RunTracker{pool: db.Pool()}
}

// NewRunID mints a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// StartRun inserts the run in its initial state.
func (t *RunTracker) StartRun(ctx context.Context, run domain.ScraperRun) error {
	_, err := t.pool.Exec(ctx,
		`INSERT INTO scraper_runs (run_id, status, started_at)
		 VALUES ($1, $2, $3)`,
		run.RunID, run.Status, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to start run %s: %w", run.RunID, err)
	}
	return nil
}

// FinishRun records the run's terminal state and stats.
func (t *RunTracker) FinishRun(ctx context.Context, run domain.ScraperRun) error {
	_, err := t.pool.Exec(ctx,
		`UPDATE scraper_runs SET
		   status = $2, completed_at = $3,
		   categories_synced = $4, groups_synced = $5, products_synced = $6,
		   prices_synced = $7, listings_fetched = $8, listings_matched = $9,
		   error_message = NULLIF($10, '')
		 WHERE run_id = $1`,
		run.RunID, run.Status, run.CompletedAt,
		run.CategoriesSynced, run.GroupsSynced, run.ProductsSynced,
		run.PricesSynced, run.ListingsFetched, run.ListingsMatched,
		run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", run.RunID, err)
	}
	return nil
}
