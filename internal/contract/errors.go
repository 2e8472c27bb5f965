package contract

import (
	"errors"
	"fmt"
)

// Sentinel kinds for errors.Is matching. The concrete error types below
// report themselves as their kind so callers can branch without errors.As.
var (
	ErrMissingColumn   = errors.New("missing column")
	ErrEmptyInput      = errors.New("empty input")
	ErrMalformedRow    = errors.New("malformed row")
	ErrUnmappedCluster = errors.New("unmapped cluster")
	ErrPersistence     = errors.New("persistence failure")
	ErrLocked          = errors.New("artifact directory locked")
)

// MissingColumnError is returned when a required column is absent from the input.
type MissingColumnError struct {
	Column string
	Source string
}

// Error implements the error interface.
func (e *MissingColumnError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("missing required column %q", e.Column)
	}
	return fmt.Sprintf("missing required column %q in %s", e.Column, e.Source)
}

// Is reports whether target is ErrMissingColumn.
func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// EmptyInputError is returned when the input table has no data rows.
type EmptyInputError struct {
	Source string
}

// Error implements the error interface.
func (e *EmptyInputError) Error() string {
	if e.Source == "" {
		return "input table has zero rows"
	}
	return fmt.Sprintf("input table %s has zero rows", e.Source)
}

// Is reports whether target is ErrEmptyInput.
func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// MalformedRowError is returned when a record cannot be parsed.
type MalformedRowError struct {
	Source string
	Line   int // 1-based line in the source, header is line 1
	Column string
	Value  string
	Cause  error
}

// Error implements the error interface.
func (e *MalformedRowError) Error() string {
	msg := fmt.Sprintf("malformed row at %s:%d", e.Source, e.Line)
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q value %q", e.Column, e.Value)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is reports whether target is ErrMalformedRow.
func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

// Unwrap returns the underlying parse error.
func (e *MalformedRowError) Unwrap() error { return e.Cause }

// UnmappedClusterError is returned when a cluster id has no profile label.
type UnmappedClusterError struct {
	Cluster int
}

// Error implements the error interface.
func (e *UnmappedClusterError) Error() string {
	return fmt.Sprintf("cluster id %d has no profile label", e.Cluster)
}

// Is reports whether target is ErrUnmappedCluster.
func (e *UnmappedClusterError) Is(target error) bool { return target == ErrUnmappedCluster }

// PersistenceError is returned when reading or writing the artifact bundle fails.
// It is never retried internally.
type PersistenceError struct {
	Op    string // write, rename, sync, verify, read
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("persistence %s %s failed", e.Op, e.Path)
	}
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Path, e.Cause)
}

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Unwrap returns the underlying I/O error.
func (e *PersistenceError) Unwrap() error { return e.Cause }

// LockedError is returned when another process holds the artifact directory lock.
type LockedError struct {
	Path   string
	Holder string
}

// Error implements the error interface.
func (e *LockedError) Error() string {
	return fmt.Sprintf("artifact directory locked by %s (%s)", e.Holder, e.Path)
}

// Is reports whether target is ErrLocked.
func (e *LockedError) Is(target error) bool { return target == ErrLocked }
