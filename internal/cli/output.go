package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/luckydraw/internal/config"
	"github.com/roach88/luckydraw/internal/ledger"
	"github.com/roach88/luckydraw/internal/picture"
)

// Process exit codes.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Expected domain failure (unknown id, duplicate user, draw is over)
	ExitCommandError = 2 // Command error (bad flags, invalid config, database cannot be opened)
)

// Error codes reported in CLI responses.
const (
	ErrCodeNotFound  = "E_NOT_FOUND"
	ErrCodeDuplicate = "E_DUPLICATE"
	ErrCodeNoPrizes  = "E_NO_PRIZES"
	ErrCodeStore     = "E_STORE"
	ErrCodeConfig    = "E_CONFIG"
	ErrCodeImage     = "E_IMAGE"
	ErrCodeUsage     = "E_USAGE"
	ErrCodeInternal  = "E_INTERNAL"
)

// ExitError carries the exit code and response code a command failed with.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	ErrCode string // One of the ErrCode* values
	Message string
	Err     error // cause, may be nil
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

// NewExitError creates a new ExitError with the given codes and message.
func NewExitError(code int, errCode, message string) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message}
}

// WrapExitError attaches codes and a message to err.
func WrapExitError(code int, errCode, message string, err error) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message, Err: err}
}

// Classify returns the response code and exit code for err.
// Domain sentinels take precedence over the code of a wrapping ExitError.
func Classify(err error) (string, int) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return ErrCodeNotFound, ExitFailure
	case errors.Is(err, ledger.ErrDuplicateKey):
		return ErrCodeDuplicate, ExitFailure
	case errors.Is(err, ledger.ErrNoPrizesAvailable):
		return ErrCodeNoPrizes, ExitFailure
	case errors.Is(err, config.ErrInvalid):
		return ErrCodeConfig, ExitCommandError
	case errors.Is(err, picture.ErrUnreadableImage), errors.Is(err, picture.ErrEmptyCollage):
		return ErrCodeImage, ExitFailure
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ErrCode
		if code == "" {
			code = ErrCodeInternal
		}
		return code, exitErr.Code
	}
	// Anything cobra rejects before RunE (unknown flag, wrong arg count).
	return ErrCodeUsage, ExitCommandError
}

// OutputFormatter renders command results as JSON envelopes or plain text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // text errors and diagnostics; Writer when nil
	Verbose   bool
}

// CLIResponse is the JSON envelope every command prints with --format json.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError describes a failed command.
type CLIError struct {
	Code    string `json:"code"`              // ErrCode* value
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Emit writes data as a JSON response, or calls text to render it for humans.
func (f *OutputFormatter) Emit(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	text(f.Writer)
	return nil
}

// Error outputs an error in the configured format. JSON errors go to
// Writer so the response stays machine-readable; text errors go to ErrWriter.
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

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// GetErrWriter returns ErrWriter, or Writer when ErrWriter is unset.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
