package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestParseValidJSON(t *testing.T) {
	data := []byte(`[
		{"name": "area: abc", "color": "#000000", "description": "def ghi"},
		{"name": "type: feature", "color": "a2eeef", "description": "New feature", "aliases": ["enhancement"]}
	]`)

	labels, err := Parse(data, FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("len = %d, want 2", len(labels))
	}
	if labels[0].Name != "area: abc" || labels[0].Color != "#000000" {
		t.Errorf("labels[0] = %+v", labels[0])
	}
	if len(labels[1].Aliases) != 1 || labels[1].Aliases[0] != "enhancement" {
		t.Errorf("labels[1].Aliases = %v, want [enhancement]", labels[1].Aliases)
	}
}

func TestParseEmptyList(t *testing.T) {
	labels, err := Parse([]byte(`[]`), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if labels == nil || len(labels) != 0 {
		t.Errorf("labels = %v, want empty non-nil slice", labels)
	}
}

func TestParseIgnoresUnknownFields(t *testing.T) {
	data := []byte(`[{"name": "bug", "color": "d73a4a", "description": "Bug", "extra": true}]`)
	if _, err := Parse(data, FormatJSON); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestParseMissingFieldsReportsEveryPath(t *testing.T) {
	_, err := Parse([]byte(`[{"invalid": true}]`), FormatJSON)

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}

	want := []string{"labels[0].color", "labels[0].description", "labels[0].name"}
	if len(valErr.Issues) != len(want) {
		t.Fatalf("issues = %+v, want %d", valErr.Issues, len(want))
	}
	for i, path := range want {
		if valErr.Issues[i].Path != path {
			t.Errorf("issue %d path = %q, want %q", i, valErr.Issues[i].Path, path)
		}
		if valErr.Issues[i].Reason != "required" {
			t.Errorf("issue %d reason = %q, want %q", i, valErr.Issues[i].Reason, "required")
		}
	}
}

func TestParseWrongTypes(t *testing.T) {
	data := []byte(`[
		{"name": "ok", "color": "000000", "description": "fine"},
		{"name": 5, "color": "000000", "description": "d", "aliases": ["x", 7]}
	]`)
	_, err := Parse(data, FormatJSON)

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}

	paths := make(map[string]bool)
	for _, is := range valErr.Issues {
		paths[is.Path] = true
		if is.Reason == "" {
			t.Errorf("issue at %s has empty reason", is.Path)
		}
	}
	for _, want := range []string{"labels[1].name", "labels[1].aliases[1]"} {
		if !paths[want] {
			t.Errorf("missing issue for %s in %+v", want, valErr.Issues)
		}
	}
	for p := range paths {
		if strings.HasPrefix(p, "labels[0]") {
			t.Errorf("unexpected issue for valid entry: %s", p)
		}
	}
}

func TestParseNotAnArray(t *testing.T) {
	_, err := Parse([]byte(`{"name": "bug"}`), FormatJSON)

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
	if len(valErr.Issues) != 1 || valErr.Issues[0].Path != "labels" {
		t.Errorf("issues = %+v, want one issue at labels", valErr.Issues)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`[{"name": `), FormatJSON)

	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("error = %v (%T), want *SyntaxError", err, err)
	}
	if synErr.Format != FormatJSON {
		t.Errorf("format = %q, want %q", synErr.Format, FormatJSON)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
- name: "area: abc"
  color: "#000000"
  description: def ghi
- name: "type: feature"
  color: a2eeef
  description: New feature
  aliases:
    - enhancement
`)
	labels, err := Parse(data, FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("len = %d, want 2", len(labels))
	}
	if labels[0].Name != "area: abc" || labels[0].Description != "def ghi" {
		t.Errorf("labels[0] = %+v", labels[0])
	}
}

func TestParseYAMLValidation(t *testing.T) {
	_, err := Parse([]byte("- name: bug\n  color: d73a4a\n"), FormatYAML)

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
	if len(valErr.Issues) != 1 || valErr.Issues[0].Path != "labels[0].description" {
		t.Errorf("issues = %+v, want labels[0].description", valErr.Issues)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Issues: []Issue{
		{Path: "labels[0].color", Reason: "required"},
		{Path: "labels[0].name", Reason: "required"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "2 issue(s)") {
		t.Errorf("message %q missing count", msg)
	}
	if !strings.Contains(msg, "labels[0].name: required") {
		t.Errorf("message %q missing issue line", msg)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"labels.json", FormatJSON},
		{"labels.yaml", FormatYAML},
		{"labels.YML", FormatYAML},
		{"labels", FormatJSON},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
