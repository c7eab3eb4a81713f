package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/contactsync/internal/config"
	"github.com/roach88/contactsync/internal/contacts"
	"github.com/roach88/contactsync/internal/txn"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Write or read failed (contact not found, provider error, etc.)
	ExitCommandError = 2 // Command error (bad arguments, invalid config, unreadable contact file, etc.)
)

// Error codes for CLI output.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeInvalidArg    = "E002" // Invalid command argument
	ErrCodeConfig        = "E003" // Invalid configuration
	ErrCodeContactFile   = "E004" // Contact file unreadable or malformed
	ErrCodeNotFound      = "E005" // Contact not found
	ErrCodeDatabase      = "E006" // Database could not be opened
	ErrCodeTransport     = "E101" // Provider rejected or failed a batch
	ErrCodeRowTooLarge   = "E102" // Single row larger than the payload limit
	ErrCodeUnresolvedRef = "E103" // Internal back-reference error
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// fail reports err through the formatter and returns the matching ExitError.
func (f *OutputFormatter) fail(message string, err error) error {
	exitCode, code := classifyError(err)
	var details interface{}
	if err != nil {
		details = err.Error()
	}
	_ = f.Error(code, message, details)
	return WrapExitError(exitCode, message, err)
}

// classifyError maps an error to an exit code and CLI error code.
func classifyError(err error) (int, string) {
	var cfgErr *config.Error
	var argErr *argError
	var fileErr *contactFileError
	var dbErr *openDatabaseError
	switch {
	case errors.As(err, &argErr):
		return ExitCommandError, ErrCodeInvalidArg
	case errors.As(err, &cfgErr):
		return ExitCommandError, ErrCodeConfig
	case errors.As(err, &fileErr):
		return ExitCommandError, ErrCodeContactFile
	case errors.As(err, &dbErr):
		return ExitCommandError, ErrCodeDatabase
	case errors.Is(err, contacts.ErrNotFound):
		return ExitFailure, ErrCodeNotFound
	case txn.IsRowTooLargeError(err):
		return ExitFailure, ErrCodeRowTooLarge
	case txn.IsUnresolvedReferenceError(err):
		return ExitFailure, ErrCodeUnresolvedRef
	case txn.IsTransportError(err):
		return ExitFailure, ErrCodeTransport
	default:
		return ExitFailure, ErrCodeGeneric
	}
}

// argError is an invalid command-line argument.
type argError struct {
	Arg     string
	Message string
}

func (e *argError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Arg, e.Message)
}
