package checkerboard

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateLetterKeyword = errors.New("keyword repeats a letter")
	ErrKeywordLength          = errors.New("keyword must have exactly 5 letters")
	ErrMalformedCiphertext    = errors.New("malformed ciphertext")
	ErrCribNotFound           = errors.New("crib not found")
	ErrCribAmbiguous          = errors.New("crib fits more than one position")
	ErrCribConflict           = errors.New("crib contradicts the ciphertext")

	ErrNoKeywordCandidates = errors.New("no keyword candidates")
	ErrNoConsistentKeyword = errors.New("no consistent keyword pair")
)

// InputValidationError reports a malformed keyword, ciphertext or crib. Nothing is solved.
type InputValidationError struct {
	Field string
	Err   error
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *InputValidationError) Unwrap() error {
	return e.Err
}

// SearchExhaustedError reports that keyword search or elimination left no viable pair.
type SearchExhaustedError struct {
	Stage string
	Err   error
}

func (e *SearchExhaustedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *SearchExhaustedError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &InputValidationError{Field: field, Err: err}
}

func exhausted(stage string, err error) error {
	return &SearchExhaustedError{Stage: stage, Err: err}
}
