package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/verixa/internal/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected request or failed scenario (bad input, unknown id, order not written)
	ExitCommandError = 2 // Command error (bad config, engine unavailable, query failure)
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeValidation = "E_VALIDATION"
	ErrCodeNotFound   = "E_NOT_FOUND"
	ErrCodeOrderWrite = "E_ORDER_WRITE"
	ErrCodeQuery      = "E_QUERY"
	ErrCodeEngine     = "E_ENGINE_INIT"
	ErrCodeGeneric    = "E_INTERNAL"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already written through an OutputFormatter
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

// Reported reports whether err has already been shown to the user, so the
// caller should only exit with its code.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}

// markReported flags err as already shown and returns it.
func markReported(err *ExitError) *ExitError {
	err.reported = true
	return err
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
	Status  string    `json:"status"`             // "ok" or "error"
	Data    any       `json:"data,omitempty"`     // success payload
	Error   *CLIError `json:"error,omitempty"`    // error details
	TraceID string    `json:"trace_id,omitempty"` // optional trace correlation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
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
func (f *OutputFormatter) Error(code, message string, details any) error {
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
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// classify maps a storefront error onto an error code and exit code.
// Errors the shopper can fix exit with ExitFailure; infrastructure errors
// exit with ExitCommandError.
func classify(err error) (string, int) {
	switch {
	case model.IsOrderWriteError(err):
		return ErrCodeOrderWrite, ExitFailure
	case model.IsValidationError(err):
		return ErrCodeValidation, ExitFailure
	case errors.Is(err, model.ErrNotFound):
		return ErrCodeNotFound, ExitFailure
	case model.IsQueryError(err):
		return ErrCodeQuery, ExitCommandError
	case model.IsEngineInitError(err):
		return ErrCodeEngine, ExitCommandError
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}

// reportError writes err through the formatter and converts it to an
// ExitError. An error that already carries an exit code keeps it.
func reportError(f *OutputFormatter, err error, logger *slog.Logger) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code, _ := classify(err)
		_ = f.Error(code, exitErr.Error(), nil)
		return markReported(exitErr)
	}

	code, exit := classify(err)
	var details any
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		details = map[string]string{"field": ve.Field}
	}
	var owe *model.OrderWriteError
	if errors.As(err, &owe) {
		details = map[string]string{"stage": owe.Stage}
	}

	if logger != nil {
		logger.Debug("command failed", "code", code, "error", err)
	}
	_ = f.Error(code, err.Error(), details)
	return markReported(WrapExitError(exit, code, err))
}
