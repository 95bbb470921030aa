package model

// ExistingLabel is a label as currently reported by the remote repository.
// Color and Description are nil when the remote omits them or sends null.
type ExistingLabel struct {
	Name        string  `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

// ColorValue returns the label color, or "" when absent.
func (l ExistingLabel) ColorValue() string {
	if l.Color == nil {
		return ""
	}
	return *l.Color
}

// DescriptionValue returns the label description, or "" when absent.
func (l ExistingLabel) DescriptionValue() string {
	if l.Description == nil {
		return ""
	}
	return *l.Description
}

// DesiredLabel is a label the caller wants to exist. Color may carry a
// leading "#". Aliases name existing labels that should be treated as this
// label even when neither the exact nor the un-prefixed name matches.
type DesiredLabel struct {
	Name        string   `json:"name"`
	Color       string   `json:"color"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases,omitempty"`
}

// NewExistingLabel builds an ExistingLabel with both optional fields present.
func NewExistingLabel(name, color, description string) ExistingLabel {
	return ExistingLabel{Name: name, Color: &color, Description: &description}
}
