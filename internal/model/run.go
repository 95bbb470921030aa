package model

import "time"

// Run is a journal record of one reconciliation against a repository.
type Run struct {
	ID         int       `json:"id"`
	Owner      string    `json:"owner"`
	Repository string    `json:"repository"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Planned    int       `json:"planned"`
	Applied    int       `json:"applied"`
	Failed     int       `json:"failed"`
}

// ChangeStatus is the outcome of a single change within a run.
type ChangeStatus string

const (
	StatusPlanned ChangeStatus = "planned"
	StatusApplied ChangeStatus = "applied"
	StatusFailed  ChangeStatus = "failed"
)

// Color returns a color name string suitable for terminal rendering.
func (s ChangeStatus) Color() string {
	switch s {
	case StatusApplied:
		return "green"
	case StatusFailed:
		return "red"
	default:
		return "gray"
	}
}

// ChangeRecord is the journal form of a Change plus its outcome.
type ChangeRecord struct {
	ID          int          `json:"id"`
	RunID       int          `json:"run_id"`
	Kind        ChangeKind   `json:"kind"`
	Name        string       `json:"name"`
	NewName     string       `json:"new_name,omitempty"`
	Color       string       `json:"color,omitempty"`
	Description string       `json:"description,omitempty"`
	Status      ChangeStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
}

// RecordFromChange flattens a Change into a ChangeRecord with the given
// status. RunID and ID are left for the journal to fill in.
func RecordFromChange(c Change, status ChangeStatus, err error) ChangeRecord {
	rec := ChangeRecord{Kind: c.Kind(), Status: status}
	switch c := c.(type) {
	case Create:
		rec.Name = c.Name
		rec.Color = c.Color
		rec.Description = c.Description
	case Update:
		rec.Name = c.OriginalName
		rec.NewName = c.NewName
		rec.Color = c.Color
		rec.Description = c.Description
	case Delete:
		rec.Name = c.Name
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}
