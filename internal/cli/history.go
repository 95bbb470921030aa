package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/labelsync/internal/db"
	"github.com/ALT-F4-LLC/labelsync/internal/model"
	"github.com/ALT-F4-LLC/labelsync/internal/output"
	"github.com/ALT-F4-LLC/labelsync/internal/render"
)

// historyResult is the JSON wire format for the run list.
type historyResult struct {
	Runs  []*model.Run `json:"runs"`
	Total int          `json:"total"`
}

// runDetailResult is the JSON wire format for a single run.
type runDetailResult struct {
	Run      *model.Run            `json:"run"`
	Changes  []model.ChangeRecord  `json:"changes"`
	Snapshot []model.ExistingLabel `json:"snapshot"`
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded runs from the journal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		conn, err := openExistingJournal(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		if len(args) == 1 {
			id, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
			if err != nil || id <= 0 {
				return cmdErr(fmt.Errorf("invalid run ID %q", args[0]), output.ErrValidation)
			}

			run, err := db.GetRun(conn, id)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return cmdErr(fmt.Errorf("run #%d not found", id), output.ErrNotFound)
				}
				return cmdErr(fmt.Errorf("fetching run: %w", err), output.ErrGeneral)
			}
			changes, err := db.GetRunChanges(conn, id)
			if err != nil {
				return cmdErr(fmt.Errorf("fetching run changes: %w", err), output.ErrGeneral)
			}
			snapshot, err := db.GetRunSnapshot(conn, id)
			if err != nil {
				return cmdErr(fmt.Errorf("fetching run snapshot: %w", err), output.ErrGeneral)
			}

			if changes == nil {
				changes = []model.ChangeRecord{}
			}
			if snapshot == nil {
				snapshot = []model.ExistingLabel{}
			}

			var message string
			if !w.JSONMode {
				message = render.RenderRunDetail(run, changes)
			}
			w.Success(runDetailResult{Run: run, Changes: changes, Snapshot: snapshot}, message)
			return nil
		}

		if before, _ := cmd.Flags().GetDuration("prune"); before > 0 {
			cutoff := time.Now().Add(-before)
			n, err := db.DeleteRunsBefore(conn, cutoff)
			if err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
			w.Success(struct {
				Pruned int       `json:"pruned"`
				Before time.Time `json:"before"`
			}{n, cutoff}, fmt.Sprintf("Pruned %s started before %s", english.Plural(n, "run", ""), humanize.Time(cutoff)))
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")
		owner, repo := cfg.Owner, cfg.Repository
		if all {
			owner, repo = "", ""
		}

		runs, err := db.ListRuns(conn, owner, repo, limit)
		if err != nil {
			return cmdErr(fmt.Errorf("listing runs: %w", err), output.ErrGeneral)
		}
		if runs == nil {
			runs = []*model.Run{}
		}

		var message string
		if !w.JSONMode {
			message = render.RenderRuns(runs)
		}
		w.Success(historyResult{Runs: runs, Total: len(runs)}, message)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("journal", "", "SQLite journal to read")
	historyCmd.Flags().String("owner", "", "Only show runs for this owner")
	historyCmd.Flags().String("repository", "", "Only show runs for this repository")
	historyCmd.Flags().Bool("all", false, "Show runs for every repository")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
	historyCmd.Flags().Duration("prune", 0, "Delete runs older than this duration (e.g. 720h)")
	rootCmd.AddCommand(historyCmd)
}
