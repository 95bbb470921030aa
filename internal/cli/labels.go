package cli

import (
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
	"github.com/ALT-F4-LLC/labelsync/internal/render"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List a repository's current labels",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		client, err := newClient(cmd, cfg)
		if err != nil {
			return err
		}

		labels, err := client.ListLabels(cmd.Context())
		if err != nil {
			return remoteErr(err)
		}
		if labels == nil {
			labels = []model.ExistingLabel{}
		}

		var message string
		if !w.JSONMode {
			message = render.RenderLabels(labels)
		}
		w.Success(labels, message)
		w.Info("%d labels in %s/%s", len(labels), cfg.Owner, cfg.Repository)
		return nil
	},
}

func init() {
	addRepoFlags(labelsCmd)
	rootCmd.AddCommand(labelsCmd)
}
