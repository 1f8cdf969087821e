package waymarks

import (
	"errors"
	"fmt"
)

// Error kinds returned by the gazetteer. Match them with errors.Is.
var (
	// ErrUnresolvedCountry means a token matched neither a country name nor an ISO code.
	ErrUnresolvedCountry = errors.New("unresolved country")
	// ErrAcquisition covers download, extraction and reference decoding failures.
	ErrAcquisition = errors.New("reference data acquisition failed")
	// ErrDecode means a file exists but its content could not be decoded.
	ErrDecode = errors.New("decode error")
	// ErrNotFound means a persisted file does not exist yet.
	ErrNotFound = errors.New("not found")
	// ErrPersist means a store could not be written.
	ErrPersist = errors.New("persist error")
)

// UnresolvedCountryError reports a country token that is not a known name or code.
type UnresolvedCountryError struct {
	Token      string
	Suggestion string // closest registered country name, if any
}

func (e *UnresolvedCountryError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid country name or ISO: %s (did you mean %q?)", e.Token, e.Suggestion)
	}
	return fmt.Sprintf("invalid country name or ISO: %s", e.Token)
}

func (e *UnresolvedCountryError) Is(target error) bool {
	return target == ErrUnresolvedCountry
}
