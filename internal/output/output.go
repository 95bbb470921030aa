package output

import (
	"fmt"
	"io"
	"os"
)

// Writer is the single sink for command results. In JSON mode every result
// or error is one envelope on Stdout; otherwise results go to Stdout and
// notes, warnings and errors to Stderr.
type Writer struct {
	JSONMode  bool
	QuietMode bool
	Stdout    io.Writer
	Stderr    io.Writer
}

// New returns a Writer on the process's standard streams.
func New(jsonMode, quietMode bool) *Writer {
	return &Writer{
		JSONMode:  jsonMode,
		QuietMode: quietMode,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Success reports a result: data in JSON mode, message otherwise.
func (w *Writer) Success(data any, message string) {
	if w.JSONMode {
		writeJSONSuccess(w.Stdout, data, message)
		return
	}
	writeHumanSuccess(w.Stdout, message)
}

// Error reports err and returns the process exit code for code.
func (w *Writer) Error(err error, code ErrorCode) int {
	return w.ErrorWithDetails(err, code, nil)
}

// ErrorWithDetails is Error with structured details attached to the JSON
// envelope, such as the individual issues of a validation failure. Human
// mode prints only the error, whose message is expected to carry the same
// information.
func (w *Writer) ErrorWithDetails(err error, code ErrorCode, details any) int {
	if w.JSONMode {
		writeJSONError(w.Stdout, err, code, details)
	} else {
		toneError.writeLine(w.Stderr, err.Error())
	}
	return ExitCodeForError(code)
}

// Info writes a dimmed note to Stderr. It is silent in quiet and JSON mode,
// where the envelope on Stdout is the only output.
func (w *Writer) Info(format string, args ...any) {
	if w.QuietMode || w.JSONMode {
		return
	}
	toneInfo.writeLine(w.Stderr, fmt.Sprintf(format, args...))
}

// Warn writes a warning to Stderr. Quiet mode keeps warnings; JSON mode
// drops them.
func (w *Writer) Warn(format string, args ...any) {
	if w.JSONMode {
		return
	}
	toneWarn.writeLine(w.Stderr, fmt.Sprintf(format, args...))
}
