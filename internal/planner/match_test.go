package planner

import (
	"testing"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

func label(name string) model.ExistingLabel {
	return model.NewExistingLabel(name, "000000", "A good label.")
}

func names(labels []model.ExistingLabel) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.Name)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"type: feature", "feature"},
		{"area: abc", "abc"},
		{"abc", "abc"},
		{"area: good first issue", "area: good first issue"},
		{"needs triage: yes", "needs triage: yes"},
		{"area:abc", "area:abc"},
		{"area:  abc", "area:  abc"},
		{"status: in-progress", "status: in-progress"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripPrefix(tt.input); got != tt.want {
			t.Errorf("StripPrefix(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMatchNoExisting(t *testing.T) {
	if got := Match(nil, "abc", nil); len(got) != 0 {
		t.Errorf("expected no matches, got %v", names(got))
	}
}

func TestMatchNoneMatch(t *testing.T) {
	got := Match([]model.ExistingLabel{label("abc")}, "def", nil)
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", names(got))
	}
}

func TestMatchExactUnprefixed(t *testing.T) {
	existing := []model.ExistingLabel{label("def"), label("abc"), label("ghi")}
	got := Match(existing, "abc", nil)
	if !equalStrings(names(got), []string{"abc"}) {
		t.Errorf("got %v, want [abc]", names(got))
	}
}

func TestMatchExactPrefixed(t *testing.T) {
	got := Match([]model.ExistingLabel{label("abc: def")}, "abc: def", nil)
	if !equalStrings(names(got), []string{"abc: def"}) {
		t.Errorf("got %v, want [abc: def]", names(got))
	}
}

func TestMatchExcludingPrefix(t *testing.T) {
	existing := []model.ExistingLabel{label("abc: def"), label("abc"), label("ghi")}
	got := Match(existing, "type: abc", nil)
	if !equalStrings(names(got), []string{"abc"}) {
		t.Errorf("got %v, want [abc]", names(got))
	}
}

func TestMatchAlias(t *testing.T) {
	existing := []model.ExistingLabel{label("abc: def"), label("enhancement"), label("ghi")}
	got := Match(existing, "type: feature", []string{"enhancement"})
	if !equalStrings(names(got), []string{"enhancement"}) {
		t.Errorf("got %v, want [enhancement]", names(got))
	}
}

func TestMatchNameAndAliasPreservesOrder(t *testing.T) {
	existing := []model.ExistingLabel{
		label("abc: def"),
		label("enhancement"),
		label("ghi"),
		label("type: feature"),
	}
	got := Match(existing, "type: feature", []string{"enhancement"})
	if !equalStrings(names(got), []string{"enhancement", "type: feature"}) {
		t.Errorf("got %v, want [enhancement type: feature]", names(got))
	}
}

func TestMatchIsCaseSensitive(t *testing.T) {
	existing := []model.ExistingLabel{label("ABC"), label("Enhancement")}
	got := Match(existing, "type: abc", []string{"enhancement"})
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", names(got))
	}
}

func TestMatchMultiWordNotStripped(t *testing.T) {
	existing := []model.ExistingLabel{label("good first issue"), label("good")}
	got := Match(existing, "area: good first issue", nil)
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", names(got))
	}
}

func TestMatchDoesNotStripExisting(t *testing.T) {
	// An existing prefixed label is not equivalent to a bare desired name.
	got := Match([]model.ExistingLabel{label("area: abc")}, "abc", nil)
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", names(got))
	}
}
