// Package runledger owns the open-file lifecycle of a single driver
// invocation: the trace file, the optional bittrack per-page file, the
// event-trace output, and the terminal stats file, so that every one of
// them is flushed and closed exactly once regardless of how the run ends.
package runledger

import (
	"fmt"
	"io"
	"sync"

	"github.com/tebeka/atexit"
)

type registered struct {
	name   string
	closer io.Closer
}

// RunLedger centralizes the closers a run opens. It registers itself with
// the process's exit-time cleanup hook so that closers still run if Close
// is never called explicitly, mirroring the RAII destructors the original
// C++ programs relied on to clean up even on an early exit()/abort() path.
type RunLedger struct {
	runID string

	mu     sync.Mutex
	items  []registered
	closed bool
}

// NewRunLedger returns a ledger for the given run identity with nothing
// registered yet, and arranges for Close to run automatically at process
// exit.
func NewRunLedger(runID string) *RunLedger {
	l := &RunLedger{runID: runID}
	atexit.Register(func() { l.Close() })
	return l
}

// RunID reports the run identity this ledger was created for.
func (l *RunLedger) RunID() string { return l.runID }

// Register records c under name for diagnostics. Closers are closed in
// reverse-registration order, so a later-opened file that depends on an
// earlier one (e.g. a stats file finalized after the trace is done being
// read) closes first.
func (l *RunLedger) Register(name string, c io.Closer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, registered{name: name, closer: c})
}

// Close closes every registered closer exactly once, in reverse-
// registration order, collecting rather than stopping on individual close
// errors. Calling Close more than once is safe; subsequent calls are a
// no-op.
func (l *RunLedger) Close() []error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	for i := len(l.items) - 1; i >= 0; i-- {
		item := l.items[i]
		if err := item.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", item.name, err))
		}
	}
	return errs
}
