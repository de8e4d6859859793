package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/resmon/internal/errors"
)

// Machine mode flag - when true, errors are written as a JSON envelope on
// stdout instead of the human-friendly block on stderr.
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound  = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid   = "CONFIG_INVALID"
	ErrCodeSourceFailed    = "SOURCE_UNAVAILABLE"
	ErrCodeProcessNotFound = "PROCESS_NOT_FOUND"
	ErrCodeProcessDenied   = "PROCESS_DENIED"
	ErrCodeProcessFailed   = "PROCESS_FAILED"
	ErrCodeInvalidFilter   = "INVALID_FILTER"
	ErrCodeCommandFailed   = "COMMAND_FAILED"
	ErrCodeUnknown         = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var resErr *errors.Error
	if stderrors.As(err, &resErr) {
		out := &JSONError{
			Code:       mapErrorCode(resErr.Code, resErr.Message),
			Message:    resErr.Message,
			Suggestion: resErr.Suggestion,
		}
		if resErr.Cause != nil {
			out.Details = map[string]interface{}{"cause": resErr.Cause.Error()}
		}
		return out
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	msgLower := strings.ToLower(message)

	switch internalCode {
	case errors.ErrConfig:
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrSource:
		return ErrCodeSourceFailed
	case errors.ErrProcess:
		switch {
		case strings.Contains(msgLower, "not running") || strings.Contains(msgLower, "no such process"):
			return ErrCodeProcessNotFound
		case strings.Contains(msgLower, "not allowed") || strings.Contains(msgLower, "denied"):
			return ErrCodeProcessDenied
		}
		return ErrCodeProcessFailed
	case errors.ErrFilter:
		return ErrCodeInvalidFilter
	case errors.ErrExec:
		return ErrCodeCommandFailed
	}

	return ErrCodeUnknown
}
