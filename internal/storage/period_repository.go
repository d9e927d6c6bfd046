package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/types"
)

// PeriodRepository stores period-level financial figures, the freshest of
// the resolver's three sources.
type PeriodRepository struct {
	db *PostgresDB
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(db *PostgresDB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// FetchPeriod returns the stored datum for a period, or nil when none has
// been recorded. Absence is not an error: the resolver falls through to
// its lower-priority sources.
func (r *PeriodRepository) FetchPeriod(ctx context.Context, p types.Period, date time.Time) (*models.PeriodDatum, error) {
	start := models.PeriodStart(p, date)

	var total *decimal.Decimal
	var byCategoryJSON []byte

	err := r.db.Pool().QueryRow(ctx,
		`SELECT total, by_category FROM period_data WHERE period_type = $1 AND period_start = $2`,
		p, start,
	).Scan(&total, &byCategoryJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("fetch period", err)
	}

	datum := &models.PeriodDatum{Total: total}
	if len(byCategoryJSON) > 0 {
		if err := json.Unmarshal(byCategoryJSON, &datum.ByCategory); err != nil {
			return nil, apperrors.NewDatabaseError("decode period categories", err)
		}
	}

	return datum, nil
}

// UpsertPeriod records a period datum, replacing any prior figure.
func (r *PeriodRepository) UpsertPeriod(ctx context.Context, p types.Period, date time.Time, datum *models.PeriodDatum) error {
	start := models.PeriodStart(p, date)

	byCategoryJSON, err := json.Marshal(datum.ByCategory)
	if err != nil {
		return apperrors.NewDatabaseError("encode period categories", err)
	}

	_, err = r.db.Pool().Exec(ctx, `
		INSERT INTO period_data (period_type, period_start, total, by_category, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (period_type, period_start)
		DO UPDATE SET total = EXCLUDED.total, by_category = EXCLUDED.by_category, updated_at = NOW()
	`, p, start, datum.Total, byCategoryJSON)
	if err != nil {
		return apperrors.NewDatabaseError("upsert period", err)
	}

	return nil
}
