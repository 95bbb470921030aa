package planner

import (
	"strings"

	"github.com/ALT-F4-LLC/labelsync/internal/filter"
	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

// StripHash removes a single leading "#" from a color.
func StripHash(color string) string {
	return strings.TrimPrefix(color, "#")
}

// Plan computes the changes that bring existing in line with desired.
// Desired labels are processed in order and the output keeps that order.
// For each desired label, deletions of superseded duplicates come first,
// followed by at most one update, or a single create when nothing
// equivalent exists.
func Plan(existing []model.ExistingLabel, desired []model.DesiredLabel) []model.Change {
	var changes []model.Change
	for _, d := range desired {
		changes = append(changes, planLabel(existing, d)...)
	}
	return changes
}

// planLabel classifies the equivalents of a single desired label.
func planLabel(existing []model.ExistingLabel, d model.DesiredLabel) []model.Change {
	color := StripHash(d.Color)

	equivalents := Match(existing, d.Name, d.Aliases)
	if len(equivalents) == 0 {
		return []model.Change{model.Create{
			Name:        d.Name,
			Color:       color,
			Description: d.Description,
		}}
	}

	// keep is the name of the label that survives. When a label already
	// carries the desired name it wins; otherwise the first equivalent is
	// renamed and any further equivalents are duplicates of it.
	keep := equivalents[0].Name
	if identical, ok := filter.FindByName(existing, d.Name); ok {
		keep = identical.Name
	}

	var deletes []model.Change
	var update model.Change
	for _, eq := range equivalents {
		if eq.Name != keep {
			deletes = append(deletes, model.Delete{Name: eq.Name})
			continue
		}
		if update != nil {
			// Repeated name in the remote listing; one update covers it.
			continue
		}
		if converged(eq, d.Name, color, d.Description) {
			continue
		}
		update = model.Update{
			OriginalName: eq.Name,
			NewName:      d.Name,
			Color:        color,
			Description:  d.Description,
		}
	}

	if update != nil {
		return append(deletes, update)
	}
	return deletes
}

// converged reports whether eq already has the desired name, color and
// description. Absent color or description never counts as converged.
func converged(eq model.ExistingLabel, name, color, description string) bool {
	if eq.Name != name {
		return false
	}
	if eq.Color == nil || *eq.Color != color {
		return false
	}
	if eq.Description == nil || *eq.Description != description {
		return false
	}
	return true
}
