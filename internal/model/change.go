package model

import (
	"encoding/json"
	"fmt"
)

// ChangeKind identifies which remote operation a Change maps to.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Color returns a color name string suitable for terminal rendering.
func (k ChangeKind) Color() string {
	switch k {
	case ChangeCreate:
		return "green"
	case ChangeUpdate:
		return "yellow"
	case ChangeDelete:
		return "red"
	default:
		return "white"
	}
}

// Icon returns a single-character marker for the kind.
func (k ChangeKind) Icon() string {
	switch k {
	case ChangeCreate:
		return "+"
	case ChangeUpdate:
		return "~"
	case ChangeDelete:
		return "-"
	default:
		return "?"
	}
}

// Change is one step of a reconciliation plan. The set of implementations
// is closed: Create, Update and Delete.
type Change interface {
	Kind() ChangeKind
	// Target is the existing (or to-be-created) label name the change acts on.
	Target() string
	isChange()
}

// Create adds a label that has no equivalent in the repository.
type Create struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// Update renames an equivalent label in place and overwrites its color and
// description.
type Update struct {
	OriginalName string `json:"original_name"`
	NewName      string `json:"new_name"`
	Color        string `json:"color"`
	Description  string `json:"description"`
}

// Delete removes a duplicate equivalent superseded by the canonical label.
type Delete struct {
	Name string `json:"name"`
}

func (Create) Kind() ChangeKind { return ChangeCreate }
func (Update) Kind() ChangeKind { return ChangeUpdate }
func (Delete) Kind() ChangeKind { return ChangeDelete }

func (c Create) Target() string { return c.Name }
func (u Update) Target() string { return u.OriginalName }
func (d Delete) Target() string { return d.Name }

func (Create) isChange() {}
func (Update) isChange() {}
func (Delete) isChange() {}

// Describe returns a short human-readable summary of a change.
func Describe(c Change) string {
	switch c := c.(type) {
	case Create:
		return fmt.Sprintf("create %q (#%s)", c.Name, c.Color)
	case Update:
		if c.OriginalName != c.NewName {
			return fmt.Sprintf("rename %q to %q (#%s)", c.OriginalName, c.NewName, c.Color)
		}
		return fmt.Sprintf("update %q (#%s)", c.NewName, c.Color)
	case Delete:
		return fmt.Sprintf("delete %q", c.Name)
	default:
		return fmt.Sprintf("unknown change %T", c)
	}
}

// MarshalChange encodes a change with an explicit "type" discriminator so
// JSON consumers can tell the variants apart.
func MarshalChange(c Change) ([]byte, error) {
	switch c := c.(type) {
	case Create:
		return json.Marshal(struct {
			Type ChangeKind `json:"type"`
			Create
		}{ChangeCreate, c})
	case Update:
		return json.Marshal(struct {
			Type ChangeKind `json:"type"`
			Update
		}{ChangeUpdate, c})
	case Delete:
		return json.Marshal(struct {
			Type ChangeKind `json:"type"`
			Delete
		}{ChangeDelete, c})
	default:
		return nil, fmt.Errorf("unknown change type %T", c)
	}
}

// ChangeList is a plan in wire form. It marshals each element with its
// type discriminator.
type ChangeList []Change

// MarshalJSON implements json.Marshaler.
func (l ChangeList) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(l))
	for _, c := range l {
		b, err := MarshalChange(c)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return json.Marshal(raw)
}

// CountByKind tallies the changes in a plan per kind.
func CountByKind(changes []Change) map[ChangeKind]int {
	counts := make(map[ChangeKind]int, 3)
	for _, c := range changes {
		counts[c.Kind()]++
	}
	return counts
}
