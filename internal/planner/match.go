package planner

import (
	"regexp"

	"github.com/ALT-F4-LLC/labelsync/internal/filter"
	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

// prefixPattern matches a single-word category prefix on a single-word name,
// e.g. "type: feature". Multi-word segments do not match.
var prefixPattern = regexp.MustCompile(`^\w+: (\w+)$`)

// StripPrefix returns the bare word of a "<category>: <word>" name, or name
// unchanged when it does not follow that convention.
func StripPrefix(name string) string {
	if m := prefixPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}

// Match returns every existing label equivalent to the desired name: an
// exact name match, the un-prefixed form of name, or one of aliases. The
// result preserves the order of existing. Comparison is case-sensitive.
func Match(existing []model.ExistingLabel, name string, aliases []string) []model.ExistingLabel {
	stripped := StripPrefix(name)
	aliasSet := filter.ToStringSet(aliases)

	var matches []model.ExistingLabel
	for _, e := range existing {
		if e.Name == name || e.Name == stripped {
			matches = append(matches, e)
			continue
		}
		if _, ok := aliasSet[e.Name]; ok {
			matches = append(matches, e)
		}
	}
	return matches
}
