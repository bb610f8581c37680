package calculator

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/fxtools/market"
	"github.com/rustyeddy/fxtools/pricing"
	"github.com/rustyeddy/fxtools/risk"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("invalid input")

// ValidationError names the request field that was rejected.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// Failure is returned by a calculator when a run ends in Failed. State
// is the step that failed; no partial result accompanies it.
type Failure struct {
	State State
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.State, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func (f *Failure) UserMessage() string { return UserMessage(f.Err) }

// UserMessage renders err as the sentence shown to whoever asked for
// the calculation.
func UserMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		err = f.Err
	}
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, market.ErrUnknownPair):
		return err.Error()
	case errors.Is(err, pricing.ErrRateLimitExceeded):
		return "Rate limit exceeded. Please wait before making another request."
	case errors.Is(err, pricing.ErrQuoteFetchFailed):
		return "Failed to fetch price, please try again."
	case errors.Is(err, risk.ErrCalculation):
		return err.Error()
	}
	return "Calculation failed, please try again."
}
