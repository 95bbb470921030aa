package filter

import "github.com/ALT-F4-LLC/labelsync/internal/model"

// ToStringSet converts a slice of strings to a set for O(1) membership checks.
func ToStringSet(ss []string) map[string]struct{} {
	if len(ss) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return set
}

// FindByName returns the first label whose name is exactly name.
func FindByName(labels []model.ExistingLabel, name string) (model.ExistingLabel, bool) {
	for _, l := range labels {
		if l.Name == name {
			return l, true
		}
	}
	return model.ExistingLabel{}, false
}
