package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/neubot/nbwatch/internal/api"
	"github.com/neubot/nbwatch/internal/errors"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
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
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "CONFIG_INVALID"
	ErrCodeAgentUnreachable = "AGENT_UNREACHABLE"
	ErrCodeAgentStatus      = "AGENT_STATUS"
	ErrCodeStateMalformed   = "STATE_MALFORMED"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeUnknown          = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
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

	jsonErr := &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}

	var nbErr *errors.Error
	if stderrors.As(err, &nbErr) {
		jsonErr.Code = mapErrorCode(nbErr.Code, nbErr.Message)
		jsonErr.Message = nbErr.Message
		jsonErr.Suggestion = nbErr.Suggestion
	}

	// An HTTP status from the agent is more specific than the transport code.
	var statusErr *api.StatusError
	if stderrors.As(err, &statusErr) {
		jsonErr.Code = ErrCodeAgentStatus
		jsonErr.Details = map[string]interface{}{
			"status": statusErr.Code,
		}
	}

	return jsonErr
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode errors.Code, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		if strings.Contains(strings.ToLower(message), "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrTransport:
		return ErrCodeAgentUnreachable
	case errors.ErrParse:
		return ErrCodeStateMalformed
	case errors.ErrRender:
		return ErrCodeRenderFailed
	}
	return ErrCodeUnknown
}
