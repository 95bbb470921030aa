package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/labelsync/internal/config"
	"github.com/ALT-F4-LLC/labelsync/internal/github"
	"github.com/ALT-F4-LLC/labelsync/internal/model"
	"github.com/ALT-F4-LLC/labelsync/internal/output"
	"github.com/ALT-F4-LLC/labelsync/internal/schema"
)

// addRepoFlags registers the flags that identify and authenticate against a
// repository.
func addRepoFlags(cmd *cobra.Command) {
	cmd.Flags().String(config.KeyOwner, "", "Repository owner (user or organization)")
	cmd.Flags().String(config.KeyRepository, "", "Repository name")
	cmd.Flags().String("auth", "", "GitHub token (default $GITHUB_TOKEN, $GH_TOKEN or the gh CLI)")
	cmd.Flags().String(config.KeyBaseURL, "", "GitHub API base URL, for GitHub Enterprise")
}

// addLabelFlags registers the flags that supply the declared label list.
func addLabelFlags(cmd *cobra.Command) {
	cmd.Flags().String("labels", "", "Declared labels as a JSON array")
	cmd.Flags().String(config.KeyLabelsFile, "", "Declared labels file (.json, .yaml or .yml; - for stdin)")
}

// addApplyFlags registers everything apply accepts.
func addApplyFlags(cmd *cobra.Command) {
	addRepoFlags(cmd)
	addLabelFlags(cmd)
	cmd.Flags().Int(config.KeyBandwidth, 6, "Maximum mutating requests per second")
	cmd.Flags().Bool("dry-run", false, "Plan only; make no changes")
	cmd.Flags().BoolP("yes", "y", false, "Apply deletions without asking")
	cmd.Flags().String(config.KeyJournal, "", "Record runs in this SQLite journal")
}

// loadDesired reads and validates the declared label list from --labels or
// the labels file. Nothing touches the network before this succeeds.
func loadDesired(cmd *cobra.Command, cfg *config.Config) ([]model.DesiredLabel, error) {
	inline, _ := cmd.Flags().GetString("labels")

	var data []byte
	var format schema.Format
	switch {
	case inline != "":
		data, format = []byte(inline), schema.FormatJSON
	case cfg.LabelsFile == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, cmdErr(fmt.Errorf("reading labels from stdin: %w", err), output.ErrGeneral)
		}
		// YAML is a superset of JSON, so either is accepted on stdin.
		data, format = b, schema.FormatYAML
	case cfg.LabelsFile != "":
		b, err := os.ReadFile(cfg.LabelsFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, cmdErr(fmt.Errorf("labels file %s not found", cfg.LabelsFile), output.ErrNotFound)
			}
			return nil, cmdErr(fmt.Errorf("reading labels file: %w", err), output.ErrGeneral)
		}
		data, format = b, schema.FormatFromPath(cfg.LabelsFile)
	default:
		return nil, cmdErr(errors.New("missing required arg: --labels"), output.ErrValidation)
	}

	desired, err := schema.Parse(data, format)
	if err != nil {
		return nil, schemaErr(err)
	}
	return desired, nil
}

func schemaErr(err error) *CmdError {
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		return &CmdError{Err: err, Code: output.ErrValidation, Details: ve.Issues}
	}
	var se *schema.SyntaxError
	if errors.As(err, &se) {
		return cmdErr(err, output.ErrValidation)
	}
	return cmdErr(err, output.ErrGeneral)
}

// requireRepository checks that owner and repository are both known.
func requireRepository(cfg *config.Config) error {
	if cfg.Owner == "" {
		return cmdErr(errors.New("missing required arg: --owner"), output.ErrValidation)
	}
	if cfg.Repository == "" {
		return cmdErr(errors.New("missing required arg: --repository"), output.ErrValidation)
	}
	return nil
}

// newClient builds a GitHub client for the configured repository.
func newClient(cmd *cobra.Command, cfg *config.Config) (*github.Client, error) {
	if err := requireRepository(cfg); err != nil {
		return nil, err
	}

	auth, _ := cmd.Flags().GetString("auth")
	token, source := config.ResolveToken(auth)
	getLogger(cmd).Debug("resolved token", "source", source)

	client, err := github.NewClient(github.Options{
		Owner:      cfg.Owner,
		Repository: cfg.Repository,
		Token:      token,
		BaseURL:    cfg.BaseURL,
	})
	if err != nil {
		return nil, cmdErr(err, output.ErrValidation)
	}
	return client, nil
}

// remoteErr classifies a GitHub failure into an exit code.
func remoteErr(err error) *CmdError {
	switch {
	case github.IsUnauthorized(err):
		return cmdErr(err, output.ErrAuth)
	case github.IsNotFound(err):
		return cmdErr(err, output.ErrNotFound)
	default:
		return cmdErr(err, output.ErrGeneral)
	}
}
