package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/labelsync/internal/render"
)

// tone is the visual treatment of a one-line human message.
type tone struct {
	icon  string
	label string
	color lipgloss.Color
	bold  bool
	// dim renders the message text in the tone color as well.
	dim bool
}

var (
	toneSuccess = tone{icon: "✔", color: "2"}
	toneError   = tone{icon: "✘", label: "Error:", color: "1", bold: true}
	toneWarn    = tone{icon: "⚠", label: "Warning:", color: "3", bold: true}
	toneInfo    = tone{icon: "ℹ", color: "8", dim: true}
)

// writeLine prints msg with the tone's icon and label. Without colors the
// icon is dropped and only the label survives.
func (t tone) writeLine(w io.Writer, msg string) {
	if !render.ColorsEnabled() {
		if t.label != "" {
			msg = t.label + " " + msg
		}
		fmt.Fprintln(w, msg)
		return
	}

	style := lipgloss.NewStyle().Foreground(t.color).Bold(t.bold)
	parts := []string{style.Render(t.icon)}
	if t.label != "" {
		parts = append(parts, style.Render(t.label))
	}
	if t.dim {
		msg = lipgloss.NewStyle().Foreground(t.color).Render(msg)
	}
	fmt.Fprintln(w, strings.Join(append(parts, msg), " "))
}

// writeHumanSuccess prints a success message. Multi-line content such as a
// plan table is printed untouched.
func writeHumanSuccess(w io.Writer, message string) {
	switch {
	case message == "":
	case strings.Contains(message, "\n"):
		fmt.Fprintln(w, message)
	default:
		toneSuccess.writeLine(w, message)
	}
}
