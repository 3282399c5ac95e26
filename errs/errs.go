// Package errs defines the two concrete fatal-error types shared across the
// module, so callers can errors.As them into an exit code and a log level
// instead of matching on string content.
package errs

import "fmt"

// ConfigError reports a bad flag, bad mode string, or an invariant the
// configuration itself violates (e.g. bucket_interval < bits_per_slot).
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config error: %s", e.Msg) }

// IoError reports a missing file, an unreadable file, a size that isn't a
// multiple of the expected record size, or a mismatch between two files that
// are supposed to agree (e.g. bittrack summary vs. per-page table).
type IoError struct {
	Msg string
	Err error
}

func (e *IoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("io error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("io error: %s", e.Msg)
}

func (e *IoError) Unwrap() error { return e.Err }
