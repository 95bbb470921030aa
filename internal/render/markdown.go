package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize/english"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

// ColorsEnabled returns whether terminal colors should be used.
// It returns false if the NO_COLOR environment variable is set (any value)
// or if TERM is set to "dumb".
func ColorsEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// RenderMarkdown renders markdown text for terminal display.
// When colors are disabled, it returns the content unmodified.
func RenderMarkdown(content string) (string, error) {
	if content == "" {
		return "", nil
	}

	if !ColorsEnabled() {
		return content, nil
	}

	rendered, err := glamour.RenderWithEnvironmentConfig(content)
	if err != nil {
		return content, err
	}

	return strings.TrimSpace(rendered), nil
}

// PlanMarkdown renders a plan as a Markdown report suitable for pull request
// comments or CI summaries.
func PlanMarkdown(owner, repo string, changes []model.Change) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Label changes for `%s/%s`\n\n", owner, repo)

	if len(changes) == 0 {
		b.WriteString("Labels are already in sync. No changes planned.\n")
		return b.String()
	}

	counts := model.CountByKind(changes)
	fmt.Fprintf(&b, "%s: %d to create, %d to update, %d to delete.\n\n",
		english.Plural(len(changes), "change", ""),
		counts[model.ChangeCreate], counts[model.ChangeUpdate], counts[model.ChangeDelete])

	b.WriteString("| | Action | Label | Color | Description |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, c := range changes {
		action, label, color, description := changeColumns(c)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			c.Kind().Icon(), action, escapeCell(label), color, escapeCell(description))
	}

	return b.String()
}

// changeColumns splits a change into the columns shared by the table and
// Markdown renderers.
func changeColumns(c model.Change) (action, label, color, description string) {
	switch c := c.(type) {
	case model.Create:
		return "create", c.Name, "#" + c.Color, c.Description
	case model.Update:
		if c.OriginalName != c.NewName {
			return "rename", c.OriginalName + " → " + c.NewName, "#" + c.Color, c.Description
		}
		return "update", c.NewName, "#" + c.Color, c.Description
	case model.Delete:
		return "delete", c.Name, "", ""
	default:
		return string(c.Kind()), c.Target(), "", ""
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
