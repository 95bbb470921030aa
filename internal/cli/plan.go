package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/labelsync/internal/output"
	"github.com/ALT-F4-LLC/labelsync/internal/reconcile"
	"github.com/ALT-F4-LLC/labelsync/internal/render"
)

// planResult is the JSON wire format for the plan command.
type planResult struct {
	applyResult
	Markdown string `json:"markdown,omitempty"`
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the changes apply would make, without making them",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		desired, err := loadDesired(cmd, cfg)
		if err != nil {
			return err
		}

		client, err := newClient(cmd, cfg)
		if err != nil {
			return err
		}

		started := time.Now()
		report, err := reconcile.Run(cmd.Context(), reconcile.Options{
			Reader:  client,
			Desired: desired,
			DryRun:  true,
			Logger:  getLogger(cmd),
		})
		if err != nil {
			return remoteErr(fmt.Errorf("reading labels of %s/%s: %w", cfg.Owner, cfg.Repository, err))
		}

		result := planResult{applyResult: applyResult{
			Owner:      cfg.Owner,
			Repository: cfg.Repository,
			DryRun:     true,
			Changes:    report.Changes,
			RunID:      recordRun(cmd, report, started),
		}}

		markdown, _ := cmd.Flags().GetBool("markdown")
		if markdown {
			result.Markdown = render.PlanMarkdown(cfg.Owner, cfg.Repository, report.Changes)
		}

		if w.JSONMode {
			w.Success(result, "")
			return nil
		}

		if !markdown {
			w.Success(result, applySummary(cfg.Owner+"/"+cfg.Repository, report, false))
			return nil
		}

		// Raw Markdown when piped, so it can be posted as a comment.
		if !render.IsTerminal(os.Stdout) {
			fmt.Fprint(w.Stdout, result.Markdown)
			return nil
		}
		rendered, err := render.RenderMarkdown(result.Markdown)
		if err != nil {
			return cmdErr(fmt.Errorf("rendering markdown: %w", err), output.ErrGeneral)
		}
		w.Success(result, rendered)
		return nil
	},
}

func init() {
	addRepoFlags(planCmd)
	addLabelFlags(planCmd)
	planCmd.Flags().String("journal", "", "Record the plan in this SQLite journal")
	planCmd.Flags().Bool("markdown", false, "Emit the plan as a Markdown report")
	rootCmd.AddCommand(planCmd)
}
