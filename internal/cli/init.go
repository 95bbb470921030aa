package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/ALT-F4-LLC/labelsync/internal/config"
	"github.com/ALT-F4-LLC/labelsync/internal/db"
	"github.com/ALT-F4-LLC/labelsync/internal/output"
	"github.com/ALT-F4-LLC/labelsync/internal/render"
)

// fileConfig is the on-disk shape of .labelsync.yaml.
type fileConfig struct {
	Owner      string `json:"owner,omitempty"`
	Repository string `json:"repository,omitempty"`
	LabelsFile string `json:"labels-file,omitempty"`
	Bandwidth  int    `json:"bandwidth,omitempty"`
	Journal    string `json:"journal,omitempty"`
	BaseURL    string `json:"base-url,omitempty"`
}

type initResult struct {
	ConfigFile    string `json:"config_file"`
	Journal       string `json:"journal,omitempty"`
	SchemaVersion int    `json:"schema_version,omitempty"`
	Created       bool   `json:"created"`
}

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a starter config file and initialize the journal",
	Annotations: map[string]string{"skipConfigFile": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.DefaultConfigFile
		}
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(path); err == nil && !force {
			return cmdErr(fmt.Errorf("%s already exists: use --force to overwrite it", path), output.ErrConflict)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cmdErr(fmt.Errorf("checking %s: %w", path, err), output.ErrGeneral)
		}

		labelsFile := cfg.LabelsFile
		if labelsFile == "" {
			labelsFile = "labels.yaml"
		}
		data, err := yaml.Marshal(fileConfig{
			Owner:      cfg.Owner,
			Repository: cfg.Repository,
			LabelsFile: labelsFile,
			Bandwidth:  cfg.Bandwidth,
			Journal:    cfg.Journal,
			BaseURL:    cfg.BaseURL,
		})
		if err != nil {
			return cmdErr(fmt.Errorf("encoding config: %w", err), output.ErrGeneral)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return cmdErr(fmt.Errorf("writing config: %w", err), output.ErrGeneral)
		}

		result := initResult{ConfigFile: path, Created: true}

		if cfg.Journal != "" {
			conn, err := db.OpenJournal(cfg.Journal)
			if err != nil {
				return cmdErr(fmt.Errorf("initializing journal: %w", err), output.ErrGeneral)
			}
			defer conn.Close()

			result.Journal = cfg.Journal
			result.SchemaVersion, err = db.SchemaVersion(conn)
			if err != nil {
				return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
			}
		}

		successMsg := render.StyledText("Wrote "+path, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")))
		w.Success(result, successMsg)

		if result.Journal != "" {
			w.Info("Journal initialized at %s", result.Journal)
			w.Info("Consider adding %s to your .gitignore", result.Journal)
		}
		if cfg.LabelsFile == "" {
			w.Info("Export the current labels with: labelsync export --file %s", labelsFile)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().String(config.KeyOwner, "", "Repository owner")
	initCmd.Flags().String(config.KeyRepository, "", "Repository name")
	initCmd.Flags().String(config.KeyLabelsFile, "", "Declared labels file (default labels.yaml)")
	initCmd.Flags().Int(config.KeyBandwidth, 6, "Maximum mutating requests per second")
	initCmd.Flags().String(config.KeyJournal, "", "SQLite journal path to create")
	initCmd.Flags().String(config.KeyBaseURL, "", "GitHub API base URL")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
