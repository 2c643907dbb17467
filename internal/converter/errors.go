package converter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFileType is returned for extensions outside the allow-list.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrToolUnavailable marks a method whose binary or browser is missing.
	ErrToolUnavailable = errors.New("conversion tool unavailable")
	// ErrConversionExhausted is wrapped by ExhaustedError once every method failed.
	ErrConversionExhausted = errors.New("all conversion methods failed")
	// ErrCorruptRender means a renderer produced empty or truncated output.
	ErrCorruptRender = errors.New("rendered pdf is empty or truncated")
	// ErrBudgetExceeded means the input is larger than the render budget allows.
	ErrBudgetExceeded = errors.New("render budget exceeded")
	// ErrSourceNotFound is returned when the source path does not exist.
	ErrSourceNotFound = errors.New("source file not found")
	// ErrNoReader means no in-process reader understands the source format.
	ErrNoReader = errors.New("no native reader for source format")
)

// MethodError records one failed strategy attempt.
type MethodError struct {
	Method   string
	Category Category
	Err      error
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("%s conversion via %s: %v", e.Category, e.Method, e.Err)
}

func (e *MethodError) Unwrap() error { return e.Err }

// ExhaustedError is returned when no strategy for a category succeeded.
// errors.Is matches ErrConversionExhausted and every attempt's cause.
type ExhaustedError struct {
	Category Category
	Attempts []*MethodError
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s: no methods configured for %s", ErrConversionExhausted, e.Category)
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Method, a.Err))
	}
	return fmt.Sprintf("%s for %s (%s)", ErrConversionExhausted, e.Category, strings.Join(parts, "; "))
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts)+1)
	errs = append(errs, ErrConversionExhausted)
	for _, a := range e.Attempts {
		errs = append(errs, a)
	}
	return errs
}
