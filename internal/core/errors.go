package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLoadFailed is matched by every *LoadError.
	ErrLoadFailed = errors.New("load failed")

	// ErrEmptyFile is returned when a source yields no text at all.
	ErrEmptyFile = errors.New("empty file")

	// ErrNoRecords is returned when a source parses to zero records.
	ErrNoRecords = errors.New("no records found")

	// ErrNoSources is returned when a loader has nothing to try.
	ErrNoSources = errors.New("no collection sources configured")
)

// Attempt records the outcome of fetching one candidate source.
type Attempt struct {
	Source string
	Err    error
}

// LoadError reports that no candidate source produced a collection.
// It lists the reason of every attempt in the order they completed.
type LoadError struct {
	Attempts []Attempt
}

func (e *LoadError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrLoadFailed.Error()
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Source, a.Err)
	}
	return fmt.Sprintf("%s: %s", ErrLoadFailed, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrLoadFailed) true for any LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}

// Unwrap exposes the individual attempt errors to errors.Is / errors.As.
func (e *LoadError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// Reason returns a short human-readable explanation for UI display.
func (e *LoadError) Reason() string {
	if len(e.Attempts) == 0 {
		return "no collection source could be read"
	}
	return e.Attempts[len(e.Attempts)-1].Err.Error()
}
