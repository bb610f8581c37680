// journal/journal.go
package journal

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no calculation has the requested ID.
var ErrNotFound = errors.New("calculation not found")

// Calculation kinds.
const (
	KindPosition = "position"
	KindPip      = "pip"
)

// CalculationRecord is one successful calculator run. Parameters and
// Result hold the JSON encoded request snapshot and result bundle.
type CalculationRecord struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	Pair            string    `json:"pair"`
	AccountCurrency string    `json:"account_currency"`
	Ask             float64   `json:"ask"`
	Cached          bool      `json:"cached"`
	Parameters      string    `json:"parameters"`
	Result          string    `json:"result"`
	CreatedAt       time.Time `json:"created_at"`
}

type Journal interface {
	RecordCalculation(ctx context.Context, rec CalculationRecord) error
	Close() error
}
