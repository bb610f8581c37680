package calculator

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// State is a step of one calculator run.
type State int

const (
	Idle State = iota
	Validating
	ResolvingWeight
	FetchingQuote
	Computing
	Done
	Failed
)

var stateNames = [...]string{
	Idle:            "idle",
	Validating:      "validating",
	ResolvingWeight: "resolving_weight",
	FetchingQuote:   "fetching_quote",
	Computing:       "computing",
	Done:            "done",
	Failed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// run tracks the state of a single invocation. It is owned by the
// calling goroutine; fetch goroutines report failures as *Failure
// values instead of touching it.
type run struct {
	state State
	log   zerolog.Logger
}

func newRun(log zerolog.Logger) *run {
	return &run{state: Idle, log: log}
}

func (r *run) enter(s State) {
	r.log.Debug().Stringer("from", r.state).Stringer("to", s).Msg("calculation state")
	r.state = s
}

// fail moves the run to Failed. err is wrapped in a *Failure naming the
// current state unless it already is one.
func (r *run) fail(err error) error {
	var f *Failure
	if !errors.As(err, &f) {
		f = &Failure{State: r.state, Err: err}
	}
	r.enter(Failed)
	r.log.Warn().Err(f.Err).Stringer("state", f.State).Msg("calculation failed")
	return f
}
