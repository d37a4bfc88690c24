package tranzlate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyText is returned when an operation needs text and got none.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyLanguage is returned when a source or target language is blank.
	ErrEmptyLanguage = errors.New("source and target language must be provided")

	// ErrSameLanguage is returned when source and target are the same code.
	ErrSameLanguage = errors.New("source language and target language cannot be the same")

	// ErrUnknownEncoding is returned for character encodings outside the WHATWG index.
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// UnsupportedLanguageError indicates the engine cannot translate from or to a
// language.
type UnsupportedLanguageError struct {
	Code   string
	Engine string
	Target bool // Code is the target language rather than the source
}

func (e *UnsupportedLanguageError) Error() string {
	preposition := "from"
	if e.Target {
		preposition = "to"
	}
	engine := e.Engine
	if engine == "" {
		engine = "translation engine"
	}
	return fmt.Sprintf("Translation %s '%s' is not supported by %s", preposition, e.Code, engine)
}

// InvalidEngineError indicates an engine name outside the registry.
type InvalidEngineError struct {
	Name      string
	Available []string
}

func (e *InvalidEngineError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("invalid translation engine: %s", e.Name)
	}
	return fmt.Sprintf("invalid translation engine: %s (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// ProcessorError indicates a markup processing failure (parse error, etc.).
type ProcessorError struct {
	Message string
	Cause   error
	Format  Format // The markup format that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.Format, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}
