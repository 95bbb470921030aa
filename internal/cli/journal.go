package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/labelsync/internal/config"
	"github.com/ALT-F4-LLC/labelsync/internal/db"
	"github.com/ALT-F4-LLC/labelsync/internal/model"
	"github.com/ALT-F4-LLC/labelsync/internal/output"
	"github.com/ALT-F4-LLC/labelsync/internal/reconcile"
)

// buildRecords flattens a report into journal records. Changes that were
// never attempted are recorded as planned.
func buildRecords(report *reconcile.Report) []model.ChangeRecord {
	records := make([]model.ChangeRecord, 0, len(report.Changes))
	if len(report.Results) == 0 {
		for _, c := range report.Changes {
			records = append(records, model.RecordFromChange(c, model.StatusPlanned, nil))
		}
		return records
	}
	for _, res := range report.Results {
		status := model.StatusApplied
		if res.Err != nil {
			status = model.StatusFailed
		}
		records = append(records, model.RecordFromChange(res.Change, status, res.Err))
	}
	return records
}

// recordRun writes the run to the journal when one is configured and
// returns its ID. Journal failures are reported as warnings; they never
// fail the sync itself.
func recordRun(cmd *cobra.Command, report *reconcile.Report, started time.Time) int {
	cfg := getCfg(cmd)
	if cfg.Journal == "" {
		return 0
	}

	conn, err := db.OpenJournal(cfg.Journal)
	if err != nil {
		getWriter(cmd).Warn("journal unavailable: %v", err)
		return 0
	}
	defer conn.Close()

	run := &model.Run{
		Owner:      cfg.Owner,
		Repository: cfg.Repository,
		StartedAt:  started,
		FinishedAt: time.Now(),
		DryRun:     report.DryRun || report.Declined,
		Planned:    len(report.Changes),
		Applied:    report.Applied(),
		Failed:     report.Failed(),
	}
	if err := db.RecordRun(conn, run, buildRecords(report), report.Existing); err != nil {
		getWriter(cmd).Warn("recording run: %v", err)
		return 0
	}
	getLogger(cmd).Debug("run recorded", "journal", cfg.Journal, "run", run.ID)
	return run.ID
}

// openExistingJournal opens the configured journal for reading.
func openExistingJournal(cmd *cobra.Command) (*sql.DB, error) {
	cfg := getCfg(cmd)
	if cfg.Journal == "" {
		return nil, cmdErr(
			errors.New("no journal configured: pass --journal or set journal in "+cfgFileHint(cfg.ConfigFile)),
			output.ErrValidation,
		)
	}
	if _, err := os.Stat(cfg.Journal); errors.Is(err, os.ErrNotExist) {
		return nil, cmdErr(fmt.Errorf("journal %s not found", cfg.Journal), output.ErrNotFound)
	}

	conn, err := db.OpenJournal(cfg.Journal)
	if err != nil {
		return nil, cmdErr(fmt.Errorf("opening journal: %w", err), output.ErrGeneral)
	}
	return conn, nil
}

func cfgFileHint(used string) string {
	if used != "" {
		return used
	}
	return config.DefaultConfigFile
}
