package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
	"github.com/ALT-F4-LLC/labelsync/internal/output"
	"github.com/ALT-F4-LLC/labelsync/internal/reconcile"
	"github.com/ALT-F4-LLC/labelsync/internal/render"
	"github.com/ALT-F4-LLC/labelsync/internal/throttle"
)

// applyResult is the JSON wire format for apply and plan.
type applyResult struct {
	Owner      string           `json:"owner"`
	Repository string           `json:"repository"`
	DryRun     bool             `json:"dry_run"`
	Declined   bool             `json:"declined,omitempty"`
	Changes    model.ChangeList `json:"changes"`
	Applied    int              `json:"applied"`
	Failed     int              `json:"failed"`
	RunID      int              `json:"run_id,omitempty"`
}

// changeFailure is one entry in the details of a partial failure.
type changeFailure struct {
	Kind  model.ChangeKind `json:"kind"`
	Label string           `json:"label"`
	Error string           `json:"error"`
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile a repository's labels with the declared list",
	Example: `  labelsync apply --owner acme --repository widgets --labels-file labels.yaml
  labelsync apply --owner acme --repository widgets --labels '[{"name":"bug","color":"d73a4a","description":"Something is broken"}]'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApply(cmd)
	},
}

func init() {
	addApplyFlags(applyCmd)
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command) error {
	w := getWriter(cmd)
	cfg := getCfg(cmd)
	logger := getLogger(cmd)

	desired, err := loadDesired(cmd, cfg)
	if err != nil {
		return err
	}

	client, err := newClient(cmd, cfg)
	if err != nil {
		return err
	}

	gate, err := throttle.NewRateGate(cfg.Bandwidth)
	if err != nil {
		return cmdErr(err, output.ErrValidation)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")

	// shown records whether the plan was already printed for confirmation.
	shown := false
	confirm := func(changes []model.Change) (bool, error) {
		deletes := deletedNames(changes)
		if !needsConfirmation(deletes, yes, w.JSONMode, render.IsTerminal(os.Stdin)) {
			return true, nil
		}
		fmt.Fprintln(w.Stdout, render.RenderPlan(changes))
		shown = true
		return confirmDeletes(deletes)
	}

	started := time.Now()
	report, err := reconcile.Run(cmd.Context(), reconcile.Options{
		Reader:  client,
		Writer:  client,
		Gate:    gate,
		Desired: desired,
		DryRun:  dryRun,
		Logger:  logger,
		Confirm: confirm,
	})
	if report == nil {
		return remoteErr(fmt.Errorf("reading labels of %s/%s: %w", cfg.Owner, cfg.Repository, err))
	}

	runID := recordRun(cmd, report, started)

	result := applyResult{
		Owner:      cfg.Owner,
		Repository: cfg.Repository,
		DryRun:     report.DryRun,
		Declined:   report.Declined,
		Changes:    report.Changes,
		Applied:    report.Applied(),
		Failed:     report.Failed(),
		RunID:      runID,
	}

	var applyErr *reconcile.ApplyError
	if errors.As(err, &applyErr) {
		if !w.JSONMode && !shown {
			fmt.Fprintln(w.Stdout, render.RenderPlan(report.Changes))
		}
		failures := make([]changeFailure, 0, len(applyErr.Failed))
		for _, f := range applyErr.Failed {
			failures = append(failures, changeFailure{
				Kind:  f.Change.Kind(),
				Label: f.Change.Target(),
				Error: f.Err.Error(),
			})
		}
		return &CmdError{Err: err, Code: output.ErrPartial, Details: failures}
	}
	if err != nil {
		return cmdErr(err, output.ErrGeneral)
	}

	if report.Declined {
		w.Info("Cancelled.")
		return nil
	}

	var message string
	if !w.JSONMode {
		message = applySummary(cfg.Owner+"/"+cfg.Repository, report, shown)
	}
	w.Success(result, message)
	return nil
}

// needsConfirmation reports whether the user should be asked before
// deleting labels. Only interactive human sessions are asked.
func needsConfirmation(deletes []string, yes, jsonMode, interactive bool) bool {
	return len(deletes) > 0 && !yes && !jsonMode && interactive
}

func deletedNames(changes []model.Change) []string {
	var names []string
	for _, c := range changes {
		if d, ok := c.(model.Delete); ok {
			names = append(names, d.Name)
		}
	}
	return names
}

func confirmDeletes(names []string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("This will delete %s. Continue?", english.Plural(len(names), "label", ""))).
				Description(strings.Join(names, ", ")).
				Affirmative("Yes, apply").
				Negative("Cancel").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("interactive form failed: %w", err)
	}
	return confirmed, nil
}

// applySummary renders the plan (unless already shown) followed by a one
// line outcome.
func applySummary(repo string, report *reconcile.Report, shown bool) string {
	if len(report.Changes) == 0 {
		return render.StyledText(fmt.Sprintf("%s labels are already in sync", repo),
			lipgloss.NewStyle().Foreground(lipgloss.Color("10")))
	}

	var line string
	if report.DryRun {
		line = fmt.Sprintf("Dry run: %s planned for %s", english.Plural(len(report.Changes), "change", ""), repo)
	} else {
		line = fmt.Sprintf("Applied %s to %s", english.Plural(report.Applied(), "change", ""), repo)
	}
	line = render.StyledText(line, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")))

	if shown {
		return line
	}
	return render.RenderPlan(report.Changes) + "\n\n" + line
}
