package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const selectCalculations = `
	SELECT id, kind, pair, account_currency, ask, cached, parameters, result, created_at
	FROM calculations`

// GetCalculation returns a single calculation by ID.
func (j *SQLite) GetCalculation(ctx context.Context, id string) (CalculationRecord, error) {
	row := j.db.QueryRowContext(ctx, selectCalculations+` WHERE id = ?`, id)

	rec, err := scanCalculation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CalculationRecord{}, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return CalculationRecord{}, err
	}
	return rec, nil
}

// ListRecent returns the newest calculations first. IDs are ULIDs, so
// they break ties between rows created in the same instant.
func (j *SQLite) ListRecent(ctx context.Context, limit int) ([]CalculationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, selectCalculations+`
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListBetween returns calculations created within [start, end).
func (j *SQLite) ListBetween(ctx context.Context, start, end time.Time) ([]CalculationRecord, error) {
	rows, err := j.db.QueryContext(ctx, selectCalculations+`
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at ASC, id ASC`, start, end)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCalculation(s scanner) (CalculationRecord, error) {
	var rec CalculationRecord
	err := s.Scan(
		&rec.ID,
		&rec.Kind,
		&rec.Pair,
		&rec.AccountCurrency,
		&rec.Ask,
		&rec.Cached,
		&rec.Parameters,
		&rec.Result,
		&rec.CreatedAt,
	)
	return rec, err
}

func collect(rows *sql.Rows) ([]CalculationRecord, error) {
	defer rows.Close()

	var out []CalculationRecord
	for rows.Next() {
		rec, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
