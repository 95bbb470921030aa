package planner

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

var outcome = model.DesiredLabel{
	Name:        "area: abc",
	Color:       "000000",
	Description: "def ghi",
}

func strPtr(s string) *string { return &s }

// simulate applies changes to an in-memory label set the way the remote
// would, so a second Plan can be checked for convergence.
func simulate(t *testing.T, existing []model.ExistingLabel, changes []model.Change) []model.ExistingLabel {
	t.Helper()
	state := append([]model.ExistingLabel(nil), existing...)
	for _, c := range changes {
		switch c := c.(type) {
		case model.Create:
			state = append(state, model.NewExistingLabel(c.Name, c.Color, c.Description))
		case model.Update:
			found := false
			for i := range state {
				if state[i].Name == c.OriginalName {
					state[i] = model.NewExistingLabel(c.NewName, c.Color, c.Description)
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("update of missing label %q", c.OriginalName)
			}
		case model.Delete:
			kept := state[:0]
			for _, l := range state {
				if l.Name != c.Name {
					kept = append(kept, l)
				}
			}
			state = kept
		default:
			t.Fatalf("unexpected change type %T", c)
		}
	}

	seen := make(map[string]bool, len(state))
	for _, l := range state {
		if seen[l.Name] {
			t.Fatalf("simulated state has duplicate label %q", l.Name)
		}
		seen[l.Name] = true
	}
	return state
}

func assertChanges(t *testing.T, got, want []model.Change) {
	t.Helper()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("changes mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestPlanCreatesWhenNoExisting(t *testing.T) {
	got := Plan(nil, []model.DesiredLabel{outcome})
	assertChanges(t, got, []model.Change{
		model.Create{Name: "area: abc", Color: "000000", Description: "def ghi"},
	})
}

func TestPlanCreatesWhenNoEquivalent(t *testing.T) {
	existing := []model.ExistingLabel{model.NewExistingLabel("other", "111111", "jkl mno")}
	got := Plan(existing, []model.DesiredLabel{outcome})
	assertChanges(t, got, []model.Change{
		model.Create{Name: "area: abc", Color: "000000", Description: "def ghi"},
	})
}

func TestPlanStripsHashOnCreate(t *testing.T) {
	d := outcome
	d.Color = "#000000"
	got := Plan(nil, []model.DesiredLabel{d})
	assertChanges(t, got, []model.Change{
		model.Create{Name: "area: abc", Color: "000000", Description: "def ghi"},
	})
}

func TestPlanNoChangeWhenIdentical(t *testing.T) {
	existing := []model.ExistingLabel{model.NewExistingLabel("area: abc", "000000", "def ghi")}
	got := Plan(existing, []model.DesiredLabel{outcome})
	if len(got) != 0 {
		t.Errorf("expected no changes, got %#v", got)
	}
}

func TestPlanNoChangeWhenIdenticalWithHashedDesiredColor(t *testing.T) {
	d := outcome
	d.Color = "#000000"
	existing := []model.ExistingLabel{model.NewExistingLabel("area: abc", "000000", "def ghi")}
	if got := Plan(existing, []model.DesiredLabel{d}); len(got) != 0 {
		t.Errorf("expected no changes, got %#v", got)
	}
}

func TestPlanUpdatesDifferentColor(t *testing.T) {
	existing := []model.ExistingLabel{model.NewExistingLabel("area: abc", "111111", "def ghi")}
	got := Plan(existing, []model.DesiredLabel{outcome})
	assertChanges(t, got, []model.Change{
		model.Update{OriginalName: "area: abc", NewName: "area: abc", Color: "000000", Description: "def ghi"},
	})
}

func TestPlanUpdatesDifferentDescription(t *testing.T) {
	existing := []model.ExistingLabel{model.NewExistingLabel("area: abc", "000000", "updated")}
	got := Plan(existing, []model.DesiredLabel{outcome})
	assertChanges(t, got, []model.Change{
		model.Update{OriginalName: "area: abc", NewName: "area: abc", Color: "000000", Description: "def ghi"},
	})
}

func TestPlanRenamesPrefixVariant(t *testing.T) {
	existing := []model.ExistingLabel{model.NewExistingLabel("abc", "000000", "def ghi")}
	got := Plan(existing, []model.DesiredLabel{outcome})
	assertChanges(t, got, []model.Change{
		model.Update{OriginalName: "abc", NewName: "area: abc", Color: "000000", Description: "def ghi"},
	})
}

func TestPlanRenamesAlias(t *testing.T) {
	existing := []model.ExistingLabel{model.NewExistingLabel("enhancement", "a2eeef", "New feature or request")}
	desired := []model.DesiredLabel{{
		Name:        "type: feature",
		Color:       "#a2eeef",
		Description: "New feature or request",
		Aliases:     []string{"enhancement"},
	}}
	got := Plan(existing, desired)
	assertChanges(t, got, []model.Change{
		model.Update{OriginalName: "enhancement", NewName: "type: feature", Color: "a2eeef", Description: "New feature or request"},
	})
}

func TestPlanUpdatesAbsentOptionalFields(t *testing.T) {
	existing := []model.ExistingLabel{
		{Name: "area: abc"},
		{Name: "area: def", Color: strPtr("000000")},
	}
	desired := []model.DesiredLabel{
		outcome,
		{Name: "area: def", Color: "000000", Description: ""},
	}
	got := Plan(existing, desired)
	assertChanges(t, got, []model.Change{
		model.Update{OriginalName: "area: abc", NewName: "area: abc", Color: "000000", Description: "def ghi"},
		model.Update{OriginalName: "area: def", NewName: "area: def", Color: "000000", Description: ""},
	})
}

func TestPlanDeletesDuplicateWhenCanonicalIdentical(t *testing.T) {
	existing := []model.ExistingLabel{
		model.NewExistingLabel("abc", "000000", "def ghi"),
		model.NewExistingLabel("area: abc", "000000", "def ghi"),
	}
	got := Plan(existing, []model.DesiredLabel{outcome})
	assertChanges(t, got, []model.Change{
		model.Delete{Name: "abc"},
	})
}

func TestPlanDeletesDuplicateAndUpdatesCanonical(t *testing.T) {
	existing := []model.ExistingLabel{
		model.NewExistingLabel("abc", "000000", "def ghi"),
		model.NewExistingLabel("area: abc", "111111", "def ghi"),
	}
	got := Plan(existing, []model.DesiredLabel{outcome})
	assertChanges(t, got, []model.Change{
		model.Delete{Name: "abc"},
		model.Update{OriginalName: "area: abc", NewName: "area: abc", Color: "000000", Description: "def ghi"},
	})
}

func TestPlanDeletesBeforeUpdateRegardlessOfListingOrder(t *testing.T) {
	existing := []model.ExistingLabel{
		model.NewExistingLabel("area: abc", "111111", "def ghi"),
		model.NewExistingLabel("abc", "000000", "def ghi"),
	}
	got := Plan(existing, []model.DesiredLabel{outcome})
	assertChanges(t, got, []model.Change{
		model.Delete{Name: "abc"},
		model.Update{OriginalName: "area: abc", NewName: "area: abc", Color: "000000", Description: "def ghi"},
	})
}

func TestPlanKeepsFirstEquivalentWithoutCanonical(t *testing.T) {
	existing := []model.ExistingLabel{
		model.NewExistingLabel("feature", "000000", "x"),
		model.NewExistingLabel("enhancement", "000000", "y"),
	}
	desired := []model.DesiredLabel{{
		Name:        "type: feature",
		Color:       "000000",
		Description: "New feature",
		Aliases:     []string{"enhancement"},
	}}
	got := Plan(existing, desired)
	assertChanges(t, got, []model.Change{
		model.Delete{Name: "enhancement"},
		model.Update{OriginalName: "feature", NewName: "type: feature", Color: "000000", Description: "New feature"},
	})
}

func TestPlanLeavesUnrelatedLabels(t *testing.T) {
	existing := []model.ExistingLabel{model.NewExistingLabel("unknown", "000000", "def ghi")}
	got := Plan(existing, []model.DesiredLabel{outcome})
	assertChanges(t, got, []model.Change{
		model.Create{Name: "area: abc", Color: "000000", Description: "def ghi"},
	})
}

func TestPlanPreservesDesiredOrder(t *testing.T) {
	desired := []model.DesiredLabel{
		{Name: "c", Color: "333333", Description: "c"},
		{Name: "a", Color: "111111", Description: "a"},
		{Name: "b", Color: "222222", Description: "b"},
	}
	got := Plan(nil, desired)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"c", "a", "b"} {
		if got[i].Target() != want {
			t.Errorf("change %d targets %q, want %q", i, got[i].Target(), want)
		}
		if got[i].Kind() != model.ChangeCreate {
			t.Errorf("change %d kind = %q, want create", i, got[i].Kind())
		}
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	existing := []model.ExistingLabel{
		model.NewExistingLabel("abc", "000000", "def ghi"),
		model.NewExistingLabel("area: abc", "111111", "def ghi"),
		model.NewExistingLabel("bug", "d73a4a", "Something isn't working"),
	}
	desired := []model.DesiredLabel{
		outcome,
		{Name: "type: bug", Color: "#d73a4a", Description: "Something isn't working"},
	}
	first := Plan(existing, desired)
	for i := 0; i < 10; i++ {
		if again := Plan(existing, desired); !reflect.DeepEqual(first, again) {
			t.Fatalf("plan %d differs from first: %#v vs %#v", i, again, first)
		}
	}
}

func TestPlanIdempotence(t *testing.T) {
	cases := []struct {
		name     string
		existing []model.ExistingLabel
		desired  []model.DesiredLabel
	}{
		{
			name:    "empty",
			desired: []model.DesiredLabel{outcome},
		},
		{
			name: "drifted color",
			existing: []model.ExistingLabel{
				model.NewExistingLabel("area: abc", "111111", "def ghi"),
			},
			desired: []model.DesiredLabel{outcome},
		},
		{
			name: "duplicate with drift",
			existing: []model.ExistingLabel{
				model.NewExistingLabel("abc", "000000", "def ghi"),
				model.NewExistingLabel("area: abc", "111111", "def ghi"),
			},
			desired: []model.DesiredLabel{outcome},
		},
		{
			name: "many variants no canonical",
			existing: []model.ExistingLabel{
				model.NewExistingLabel("enhancement", "000000", "x"),
				model.NewExistingLabel("feature", "111111", "y"),
				model.NewExistingLabel("request", "222222", "z"),
			},
			desired: []model.DesiredLabel{{
				Name:        "type: feature",
				Color:       "#000000",
				Description: "New feature",
				Aliases:     []string{"enhancement", "request"},
			}},
		},
		{
			name: "absent optional fields",
			existing: []model.ExistingLabel{
				{Name: "bug"},
				{Name: "docs", Description: strPtr("Docs")},
			},
			desired: []model.DesiredLabel{
				{Name: "type: bug", Color: "d73a4a", Description: "Bug"},
				{Name: "area: docs", Color: "#0075ca", Description: "Docs"},
			},
		},
		{
			name: "mixed",
			existing: []model.ExistingLabel{
				model.NewExistingLabel("bug", "d73a4a", "Something isn't working"),
				model.NewExistingLabel("documentation", "0075ca", "Docs"),
				model.NewExistingLabel("area: documentation", "0075ca", "Docs"),
				model.NewExistingLabel("wontfix", "ffffff", "This will not be worked on"),
			},
			desired: []model.DesiredLabel{
				{Name: "type: bug", Color: "#d73a4a", Description: "Something isn't working"},
				{Name: "area: documentation", Color: "#0075ca", Description: "Improvements or additions to documentation"},
				{Name: "status: blocked", Color: "#b60205", Description: "Blocked"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			changes := Plan(tc.existing, tc.desired)
			next := simulate(t, tc.existing, changes)
			if again := Plan(next, tc.desired); len(again) != 0 {
				t.Errorf("second plan not empty: %#v", again)
			}
		})
	}
}

func TestPlanEmptyExistingCreatesEachInOrder(t *testing.T) {
	var desired []model.DesiredLabel
	for i := 0; i < 5; i++ {
		desired = append(desired, model.DesiredLabel{
			Name:        fmt.Sprintf("area: part%d", i),
			Color:       "#00000" + fmt.Sprint(i),
			Description: "generated",
		})
	}
	got := Plan(nil, desired)
	if len(got) != len(desired) {
		t.Fatalf("len = %d, want %d", len(got), len(desired))
	}
	for i, c := range got {
		create, ok := c.(model.Create)
		if !ok {
			t.Fatalf("change %d is %T, want Create", i, c)
		}
		if create.Name != desired[i].Name {
			t.Errorf("change %d name = %q, want %q", i, create.Name, desired[i].Name)
		}
		if create.Color != StripHash(desired[i].Color) {
			t.Errorf("change %d color = %q, want %q", i, create.Color, StripHash(desired[i].Color))
		}
	}
}

func TestStripHash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#000000", "000000"},
		{"000000", "000000"},
		{"##000000", "#000000"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripHash(tt.input); got != tt.want {
			t.Errorf("StripHash(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
