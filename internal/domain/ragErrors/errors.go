// Package ragErrors is the error taxonomy shared by ingestion, retrieval and
// the HTTP layer. Every failure that crosses a component boundary is an *Error
// carrying a Kind, so callers branch on the kind and never on message text.
package ragErrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindExtraction       Kind = "EXTRACTION_ERROR"
	KindEmbedding        Kind = "EMBEDDING_ERROR"
	KindGeneration       Kind = "GENERATION_ERROR"
	KindIndexUnavailable Kind = "INDEX_UNAVAILABLE"
	KindNotFound         Kind = "NOT_FOUND"
	KindStorage          Kind = "STORAGE_ERROR"
	KindInternal         Kind = "INTERNAL_ERROR"
)

type Error struct {
	Kind    Kind
	Stage   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithStage returns a copy of e tagged with the pipeline stage that failed.
func (e *Error) WithStage(stage string) *Error {
	cp := *e
	cp.Stage = stage
	return &cp
}

func New(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, nil, format, args...)
}

func Extraction(err error, format string, args ...any) *Error {
	return New(KindExtraction, err, format, args...)
}

func Embedding(err error, format string, args ...any) *Error {
	return New(KindEmbedding, err, format, args...)
}

func Generation(err error, format string, args ...any) *Error {
	return New(KindGeneration, err, format, args...)
}

func IndexUnavailable(err error, format string, args ...any) *Error {
	return New(KindIndexUnavailable, err, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, nil, format, args...)
}

func Storage(err error, format string, args ...any) *Error {
	return New(KindStorage, err, format, args...)
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsClientFault is true for kinds caused by the caller's input.
func IsClientFault(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindExtraction, KindNotFound:
		return true
	}
	return false
}

func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// AtStage tags err with the stage that failed. Errors outside the taxonomy
// become KindInternal.
func AtStage(err error, stage string) error {
	var e *Error
	if errors.As(err, &e) {
		return e.WithStage(stage)
	}
	return New(KindInternal, err, "%s failed", stage).WithStage(stage)
}

// Classify returns err unchanged when it already carries a kind and wraps it
// as kind otherwise.
func Classify(err error, kind Kind, format string, args ...any) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return New(kind, err, format, args...)
}
