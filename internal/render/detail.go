package render

import (
	"fmt"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

// RenderRunDetail renders a single journal run with its changes.
func RenderRunDetail(run *model.Run, records []model.ChangeRecord) string {
	if !ColorsEnabled() {
		return renderPlainRunDetail(run, records)
	}

	sections := []string{renderRunHeader(run), renderRunMetadata(run)}
	if len(records) > 0 {
		sections = append(sections, renderRunChanges(records))
	}
	return strings.Join(sections, "\n\n")
}

func renderRunHeader(run *model.Run) string {
	idStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	repoStyle := lipgloss.NewStyle().Bold(true)
	modeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	return fmt.Sprintf("%s  %s  %s",
		idStyle.Render(fmt.Sprintf("Run #%d", run.ID)),
		repoStyle.Render(run.Owner+"/"+run.Repository),
		modeStyle.Render(runMode(run)),
	)
}

func renderRunMetadata(run *model.Run) string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Started:"), humanize.Time(run.StartedAt)),
		fmt.Sprintf("%s %s", labelStyle.Render("Took:"), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()),
	}
	if !run.DryRun && run.Planned > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Progress:"), formatProgressBar(run.Applied, run.Planned, 30)))
	}
	if run.Failed > 0 {
		failStyle := lipgloss.NewStyle().Foreground(ColorFromName(model.StatusFailed.Color())).Bold(true)
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Failed:"), failStyle.Render(humanize.Comma(int64(run.Failed)))))
	}
	return strings.Join(lines, "\n")
}

func renderRunChanges(records []model.ChangeRecord) string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	t := tree.New().Root(sectionStyle.Render("Changes"))

	for _, rec := range records {
		kindStyle := lipgloss.NewStyle().Foreground(ColorFromName(rec.Kind.Color()))
		statusStyle := lipgloss.NewStyle().Foreground(ColorFromName(rec.Status.Color()))
		line := fmt.Sprintf("%s %s  %s",
			kindStyle.Render(rec.Kind.Icon()),
			describeRecord(rec),
			statusStyle.Render(string(rec.Status)),
		)
		node := tree.Root(line)
		if rec.Error != "" {
			node.Child(lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(rec.Error))
		}
		t.Child(node)
	}

	return t.String()
}

func describeRecord(rec model.ChangeRecord) string {
	switch rec.Kind {
	case model.ChangeCreate:
		return fmt.Sprintf("create %q (#%s)", rec.Name, rec.Color)
	case model.ChangeUpdate:
		if rec.NewName != "" && rec.NewName != rec.Name {
			return fmt.Sprintf("rename %q to %q (#%s)", rec.Name, rec.NewName, rec.Color)
		}
		return fmt.Sprintf("update %q (#%s)", rec.Name, rec.Color)
	case model.ChangeDelete:
		return fmt.Sprintf("delete %q", rec.Name)
	default:
		return fmt.Sprintf("%s %q", rec.Kind, rec.Name)
	}
}

// formatProgressBar renders a text-based progress bar like "▰▰▰▱▱ 3/5".
func formatProgressBar(done, total, maxWidth int) string {
	suffix := fmt.Sprintf(" %d/%d", done, total)
	barWidth := maxWidth - len(suffix)
	if barWidth < 1 {
		return strings.TrimSpace(suffix)
	}
	if barWidth > total {
		barWidth = total
	}

	filled := 0
	if total > 0 {
		filled = (done * barWidth) / total
	}
	empty := barWidth - filled

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", empty)
	return bar + suffix
}

func renderPlainRunDetail(run *model.Run, records []model.ChangeRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run #%d  %s/%s  %s\n", run.ID, run.Owner, run.Repository, runMode(run))
	fmt.Fprintf(&b, "Started: %s\n", humanize.Time(run.StartedAt))
	fmt.Fprintf(&b, "Planned: %d  Applied: %d  Failed: %d\n", run.Planned, run.Applied, run.Failed)

	if len(records) > 0 {
		b.WriteString("\nChanges:\n")
		for _, rec := range records {
			fmt.Fprintf(&b, "  %s %s  %s\n", rec.Kind.Icon(), describeRecord(rec), rec.Status)
			if rec.Error != "" {
				fmt.Fprintf(&b, "      %s\n", rec.Error)
			}
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}
