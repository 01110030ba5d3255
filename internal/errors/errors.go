package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InputMissing indicates a source file does not exist
	InputMissing ErrorCode = "INPUT_MISSING"
	// InputUnreadable indicates a source file exists but cannot be read
	InputUnreadable ErrorCode = "INPUT_UNREADABLE"
	// InputEmpty indicates a source file has no recognizable rows
	InputEmpty ErrorCode = "INPUT_EMPTY"
	// TableInvalid indicates a spreadsheet has an unusable structure
	TableInvalid ErrorCode = "TABLE_INVALID"
	// NetlistInvalid indicates a netlist export cannot be decoded at all
	NetlistInvalid ErrorCode = "NETLIST_INVALID"
	// OutputWriteFailed indicates the output document could not be written
	OutputWriteFailed ErrorCode = "OUTPUT_WRITE_FAILED"
	// BudgetNotMet indicates the token budget could not be reached even
	// after all reduction passes. Recoverable: output is still produced.
	BudgetNotMet ErrorCode = "BUDGET_NOT_MET"
	// ConfigInvalid indicates a configuration file failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FuseError represents a pipeline error with a stable code, a message
// naming the failing input where applicable, and an optional hint.
type FuseError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	File    string    `json:"file,omitempty"`
	Hint    string    `json:"hint,omitempty"`
	cause   error
}

// New creates a new FuseError
func New(code ErrorCode, message string, cause error) *FuseError {
	return &FuseError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new FuseError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *FuseError {
	return &FuseError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface
func (e *FuseError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = fmt.Sprintf("%s (file: %s)", msg, e.File)
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying error
func (e *FuseError) Unwrap() error {
	return e.cause
}

// WithFile names the input file the error applies to
func (e *FuseError) WithFile(file string) *FuseError {
	e.File = file
	return e
}

// WithHint adds a user-facing suggestion
func (e *FuseError) WithHint(hint string) *FuseError {
	e.Hint = hint
	return e
}

// Terminal reports whether the error must abort the run before any
// output is produced. Everything else is recorded as a diagnostic and
// processing continues.
func (e *FuseError) Terminal() bool {
	switch e.Code {
	case InputMissing, InputUnreadable, InputEmpty, TableInvalid,
		NetlistInvalid, ConfigInvalid, OutputWriteFailed:
		return true
	}
	return false
}

// CodeOf extracts the ErrorCode from an error chain, or InternalError
// if no FuseError is present.
func CodeOf(err error) ErrorCode {
	var fe *FuseError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return InternalError
}

// IsTerminal reports whether err carries a terminal FuseError.
// Unknown errors are treated as terminal.
func IsTerminal(err error) bool {
	var fe *FuseError
	if errors.As(err, &fe) {
		return fe.Terminal()
	}
	return err != nil
}
