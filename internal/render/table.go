package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

const (
	maxNameWidth        = 32
	minDescriptionWidth = 20
)

var hexColor = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// StyledText applies a lipgloss style to text when colors are enabled.
// When colors are disabled, it returns the plain text unchanged.
func StyledText(text string, style lipgloss.Style) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// ColorFromName maps model color name strings to lipgloss colors.
func ColorFromName(name string) lipgloss.Color {
	switch name {
	case "red":
		return lipgloss.Color("9")
	case "yellow":
		return lipgloss.Color("11")
	case "green":
		return lipgloss.Color("10")
	case "gray":
		return lipgloss.Color("8")
	default:
		return lipgloss.Color("15")
	}
}

// truncate shortens a string to maxLen runes, appending an ellipsis if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// EmptyState renders a styled empty-state message with an optional contextual hint.
// When colors are enabled the message is rendered in dim gray and the hint is italic.
// When quiet is true the hint is suppressed.
func EmptyState(message, hint string, quiet bool) string {
	if !ColorsEnabled() {
		if quiet || hint == "" {
			return message
		}
		return message + "\n" + hint
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	result := dimStyle.Render(message)
	if !quiet && hint != "" {
		result += "\n" + hintStyle.Render(hint)
	}
	return result
}

// Swatch renders a small block filled with a label's hex color. It returns
// an empty string when colors are disabled or hex is not a valid color.
func Swatch(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if !ColorsEnabled() || !hexColor.MatchString(hex) {
		return ""
	}
	return lipgloss.NewStyle().Background(lipgloss.Color("#" + hex)).Render("  ")
}

// descriptionWidth leaves the rest of the terminal to the description column.
func descriptionWidth(fixed int) int {
	return max(terminalWidth()-fixed, minDescriptionWidth)
}

// RenderPlan renders a plan as a table with one row per change.
func RenderPlan(changes []model.Change) string {
	if len(changes) == 0 {
		return EmptyState("Labels are already in sync.", "", false)
	}

	if !ColorsEnabled() {
		return renderPlainPlan(changes)
	}

	headers := []string{"", "Action", "Label", "Color", "Description"}
	descWidth := descriptionWidth(maxNameWidth*2 + 30)

	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		action, label, color, description := changeColumns(c)
		swatch := ""
		if color != "" {
			swatch = Swatch(color) + " " + color
		}
		rows = append(rows, []string{
			c.Kind().Icon(),
			action,
			truncate(label, maxNameWidth*2),
			swatch,
			truncate(description, descWidth),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			if row < 0 || row >= len(changes) {
				return s
			}

			switch col {
			case 0, 1:
				return s.Foreground(ColorFromName(changes[row].Kind().Color())).Bold(true)
			case 2:
				return s.Bold(true)
			default:
				return s
			}
		})

	return t.Render()
}

func renderPlainPlan(changes []model.Change) string {
	var b strings.Builder
	for _, c := range changes {
		fmt.Fprintf(&b, "%s %s\n", c.Kind().Icon(), model.Describe(c))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderLabels renders the labels of a repository with color swatches.
func RenderLabels(labels []model.ExistingLabel) string {
	if len(labels) == 0 {
		return EmptyState("No labels found.", "Create some with: labelsync apply --labels-file labels.yaml", false)
	}

	if !ColorsEnabled() {
		return renderPlainLabels(labels)
	}

	descWidth := descriptionWidth(maxNameWidth + 20)
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		color := "-"
		if l.Color != nil {
			color = Swatch(*l.Color) + " #" + *l.Color
		}
		rows = append(rows, []string{
			truncate(l.Name, maxNameWidth),
			color,
			truncate(l.DescriptionValue(), descWidth),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("Name", "Color", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			if col == 0 {
				return s.Bold(true)
			}
			return s
		})

	return t.Render()
}

func renderPlainLabels(labels []model.ExistingLabel) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-32s %-8s %s\n", "Name", "Color", "Description")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 80))

	for _, l := range labels {
		color := "-"
		if l.Color != nil {
			color = "#" + *l.Color
		}
		fmt.Fprintf(&b, "%-32s %-8s %s\n", truncate(l.Name, maxNameWidth), color, l.DescriptionValue())
	}

	return b.String()
}

// RenderRuns renders journal runs, most recent first.
func RenderRuns(runs []*model.Run) string {
	if len(runs) == 0 {
		return EmptyState("No runs recorded.", "Enable the journal with: labelsync apply --journal <path>", false)
	}

	if !ColorsEnabled() {
		return renderPlainRuns(runs)
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, runToRow(r))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("ID", "Repository", "Mode", "Planned", "Applied", "Failed", "Started").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			if row < 0 || row >= len(runs) {
				return s
			}
			switch col {
			case 4:
				return s.Foreground(ColorFromName(model.StatusApplied.Color()))
			case 5:
				if runs[row].Failed > 0 {
					return s.Foreground(ColorFromName(model.StatusFailed.Color())).Bold(true)
				}
				return s
			case 6:
				return s.Foreground(lipgloss.Color("8"))
			default:
				return s
			}
		})

	return t.Render()
}

func runMode(r *model.Run) string {
	if r.DryRun {
		return "dry-run"
	}
	return "apply"
}

func runToRow(r *model.Run) []string {
	return []string{
		fmt.Sprintf("#%d", r.ID),
		r.Owner + "/" + r.Repository,
		runMode(r),
		humanize.Comma(int64(r.Planned)),
		humanize.Comma(int64(r.Applied)),
		humanize.Comma(int64(r.Failed)),
		humanize.Time(r.StartedAt),
	}
}

func renderPlainRuns(runs []*model.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-6s %-32s %-8s %-8s %-8s %-8s %s\n",
		"ID", "Repository", "Mode", "Planned", "Applied", "Failed", "Started")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 100))

	for _, r := range runs {
		row := runToRow(r)
		fmt.Fprintf(&b, "%-6s %-32s %-8s %-8s %-8s %-8s %s\n",
			row[0], truncate(row[1], 32), row[2], row[3], row[4], row[5], row[6])
	}

	return b.String()
}
