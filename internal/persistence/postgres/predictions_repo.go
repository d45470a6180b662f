// Package postgres archives finished predictions for audit and later
// calibration work. The pipeline never reads from here on the hot path.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

// PredictionsRepo persists prediction batches and serves audit queries.
type PredictionsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPredictionsRepo wraps an open sqlx handle. The timeout bounds every
// statement issued by the repo.
func NewPredictionsRepo(db *sqlx.DB, timeout time.Duration) *PredictionsRepo {
	return &PredictionsRepo{db: db, timeout: timeout}
}

// Connect opens and pings a Postgres handle.
func Connect(ctx context.Context, dsn string, timeout time.Duration) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// Save writes one run's predictions atomically. The markets catalogue and
// narrative ride along as JSONB; re-archiving the same (run, fixture) pair is
// a duplicate-key error.
func (r *PredictionsRepo) Save(ctx context.Context, predictions []models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout*time.Duration(len(predictions)/50+1))
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO predictions
			(run_id, fixture_id, sport, league, home_team, away_team,
			 primary_category, primary_selection, primary_odds, primary_edge,
			 primary_confidence, stake_units, payload, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range predictions {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal prediction payload: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			p.RunID, p.Fixture.ID, p.Fixture.Sport, p.Fixture.League,
			p.Fixture.HomeTeam, p.Fixture.AwayTeam,
			string(p.Primary.Category), p.Primary.Selection, p.Primary.Odds,
			p.Primary.Edge, p.Primary.Confidence, p.Primary.Stake.Units,
			payload, p.GeneratedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return fmt.Errorf("prediction already archived for fixture %s: %w", p.Fixture.ID, err)
			}
			return fmt.Errorf("failed to insert prediction: %w", err)
		}
	}

	return tx.Commit()
}

// GetByRun returns all archived predictions for one pipeline run.
func (r *PredictionsRepo) GetByRun(ctx context.Context, runID string) ([]models.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT payload
		FROM predictions
		WHERE run_id = $1
		ORDER BY primary_edge DESC`

	rows, err := r.db.QueryxContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by run: %w", err)
	}
	defer rows.Close()

	return scanPredictions(rows)
}

// GetLatestForFixture finds the most recent archived prediction for a
// fixture, or nil when none exists.
func (r *PredictionsRepo) GetLatestForFixture(ctx context.Context, fixtureID string) (*models.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT payload
		FROM predictions
		WHERE fixture_id = $1
		ORDER BY generated_at DESC
		LIMIT 1`

	var payload []byte
	err := r.db.QueryRowxContext(ctx, query, fixtureID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prediction by fixture: %w", err)
	}

	var p models.Prediction
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prediction payload: %w", err)
	}
	return &p, nil
}

// CountBySport returns archived prediction counts grouped by sport within a
// time range.
func (r *PredictionsRepo) CountBySport(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT sport, COUNT(*)
		FROM predictions
		WHERE generated_at >= $1 AND generated_at <= $2
		GROUP BY sport
		ORDER BY sport`

	rows, err := r.db.QueryxContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count predictions by sport: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var sport string
		var count int64
		if err := rows.Scan(&sport, &count); err != nil {
			return nil, fmt.Errorf("failed to scan sport count: %w", err)
		}
		counts[sport] = count
	}
	return counts, rows.Err()
}

func scanPredictions(rows *sqlx.Rows) ([]models.Prediction, error) {
	var predictions []models.Prediction
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		var p models.Prediction
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prediction payload: %w", err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return predictions, nil
}
