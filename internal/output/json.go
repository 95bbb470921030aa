package output

import (
	"encoding/json"
	"io"
)

// ErrorCode classifies a failure for scripts reading the JSON envelope.
type ErrorCode string

const (
	ErrGeneral    ErrorCode = "GENERAL_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrConflict   ErrorCode = "CONFLICT"
	// ErrAuth covers missing, invalid and under-scoped tokens.
	ErrAuth ErrorCode = "AUTH_ERROR"
	// ErrPartial means some label changes were applied and some failed.
	ErrPartial ErrorCode = "PARTIAL_FAILURE"
)

// Process exit codes, one per ErrorCode.
const (
	ExitSuccess    = 0
	ExitGeneral    = 1
	ExitNotFound   = 2
	ExitValidation = 3
	ExitConflict   = 4
	ExitAuth       = 5
	ExitPartial    = 6
)

var exitCodes = map[ErrorCode]int{
	ErrGeneral:    ExitGeneral,
	ErrNotFound:   ExitNotFound,
	ErrValidation: ExitValidation,
	ErrConflict:   ExitConflict,
	ErrAuth:       ExitAuth,
	ErrPartial:    ExitPartial,
}

// ExitCodeForError maps an ErrorCode to its exit code. Unknown codes exit 1.
func ExitCodeForError(code ErrorCode) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return ExitGeneral
}

type successEnvelope struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type errorEnvelope struct {
	OK      bool      `json:"ok"`
	Error   string    `json:"error"`
	Code    ErrorCode `json:"code"`
	Details any       `json:"details,omitempty"`
}

// encodeEnvelope writes v as one line of JSON. Label names and descriptions
// routinely contain '<' and '&', so HTML escaping is off.
func encodeEnvelope(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeJSONSuccess(w io.Writer, data any, message string) {
	encodeEnvelope(w, successEnvelope{OK: true, Data: data, Message: message})
}

func writeJSONError(w io.Writer, err error, code ErrorCode, details any) {
	encodeEnvelope(w, errorEnvelope{Error: err.Error(), Code: code, Details: details})
}
