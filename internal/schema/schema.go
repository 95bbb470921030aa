// Package schema validates declared label lists before any remote call is
// made. A list is accepted or rejected as a whole.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"sigs.k8s.io/yaml"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

//go:embed labels.schema.json
var labelsSchema []byte

const schemaID = "labels.schema.json"

// rootField is the name the label list is reported under in issue paths.
const rootField = "labels"

// Format is the encoding of a declared label list.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension. Anything that is
// not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// SyntaxError is returned when the input is not well-formed JSON or YAML.
type SyntaxError struct {
	Format Format
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parsing %s labels: %v", e.Format, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Issue is a single schema violation.
type Issue struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ValidationError lists every violation found in a declared label list.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "labels failed validation with %d issue(s):", len(e.Issues))
	for _, is := range e.Issues {
		fmt.Fprintf(&b, "\n  - %s: %s", is.Path, is.Reason)
	}
	return b.String()
}

var (
	compiled     *jsonschema.Schema
	compiledErr  error
	compiledOnce sync.Once
)

func compile() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(labelsSchema))
		if err != nil {
			compiledErr = fmt.Errorf("failed to unmarshal labels schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaID, doc); err != nil {
			compiledErr = fmt.Errorf("failed to add labels schema: %w", err)
			return
		}
		compiled, compiledErr = compiler.Compile(schemaID)
	})
	return compiled, compiledErr
}

// Parse decodes and validates a declared label list. Malformed input yields
// a *SyntaxError; schema violations yield a *ValidationError listing every
// issue. No labels are returned unless the whole list is valid.
func Parse(data []byte, format Format) ([]model.DesiredLabel, error) {
	if format == FormatYAML {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, &SyntaxError{Format: format, Err: err}
		}
		data = converted
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &SyntaxError{Format: format, Err: err}
	}

	sch, err := compile()
	if err != nil {
		return nil, err
	}

	if err := sch.Validate(instance); err != nil {
		var valErr *jsonschema.ValidationError
		if !errors.As(err, &valErr) {
			return nil, fmt.Errorf("validating labels: %w", err)
		}
		return nil, &ValidationError{Issues: collectIssues(valErr)}
	}

	var labels []model.DesiredLabel
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, &SyntaxError{Format: format, Err: err}
	}
	if labels == nil {
		labels = []model.DesiredLabel{}
	}
	return labels, nil
}

var printer = message.NewPrinter(language.English)

// collectIssues flattens the leaf causes of a validation error into issues
// sorted by path. Missing required properties are reported at the path of
// the property itself.
func collectIssues(root *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		if req, ok := e.ErrorKind.(*kind.Required); ok {
			for _, prop := range req.Missing {
				issues = append(issues, Issue{
					Path:   formatPath(append(append([]string{}, e.InstanceLocation...), prop)),
					Reason: "required",
				})
			}
			return
		}
		issues = append(issues, Issue{
			Path:   formatPath(e.InstanceLocation),
			Reason: e.ErrorKind.LocalizedString(printer),
		})
	}
	walk(root)

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Path < issues[j].Path
	})
	return issues
}

// formatPath renders an instance location as labels[0].color.
func formatPath(loc []string) string {
	var b strings.Builder
	b.WriteString(rootField)
	for _, seg := range loc {
		if _, err := strconv.Atoi(seg); err == nil {
			fmt.Fprintf(&b, "[%s]", seg)
			continue
		}
		b.WriteString(".")
		b.WriteString(seg)
	}
	return b.String()
}
