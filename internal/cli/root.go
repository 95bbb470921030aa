// Package cli implements the labelsync command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/labelsync/internal/config"
	"github.com/ALT-F4-LLC/labelsync/internal/output"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type contextKey string

const (
	cfgKey    contextKey = "cfg"
	loggerKey contextKey = "logger"
)

// CmdError wraps an error with a machine-readable error code for structured output.
type CmdError struct {
	Err     error
	Code    output.ErrorCode
	Details any
}

func (e *CmdError) Error() string { return e.Err.Error() }

func (e *CmdError) Unwrap() error { return e.Err }

func cmdErr(err error, code output.ErrorCode) *CmdError {
	return &CmdError{Err: err, Code: code}
}

var rootCmd = &cobra.Command{
	Use:   "labelsync",
	Short: "Reconcile GitHub repository labels against a declared list",
	Long: `labelsync reads a repository's labels, plans the creates, renames and
deletes needed to match a declared label list, and applies them through a
rate-limited GitHub client. Running it without a subcommand is the same as
running "labelsync apply".`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.Config
		var err error
		if _, ok := cmd.Annotations["skipConfigFile"]; ok {
			cfg, err = config.LoadWithoutFile(cmd.Flags())
		} else {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err = config.Load(configPath, cmd.Flags())
		}
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		ctx := context.WithValue(cmd.Context(), cfgKey, cfg)
		ctx = context.WithValue(ctx, loggerKey, newLogger(cmd))
		cmd.SetContext(ctx)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApply(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details to stderr")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $LABELSYNC_CONFIG or ./"+config.DefaultConfigFile+")")
	addApplyFlags(rootCmd)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

// newLogger builds the process logger. Warnings and errors go to stderr;
// --verbose adds debug output, and --json or --quiet silence it unless
// --verbose is also set.
func newLogger(cmd *cobra.Command) *slog.Logger {
	jsonMode, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")

	var out io.Writer = os.Stderr
	level := slog.LevelWarn
	switch {
	case verbose:
		level = slog.LevelDebug
	case jsonMode || quietMode:
		out = io.Discard
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

func getWriter(cmd *cobra.Command) *output.Writer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return output.New(jsonMode, quietMode)
}

func getCfg(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey).(*config.Config)
	return cfg
}

func getLogger(cmd *cobra.Command) *slog.Logger {
	logger, ok := cmd.Context().Value(loggerKey).(*slog.Logger)
	if !ok {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		jsonMode, _ := rootCmd.PersistentFlags().GetBool("json")
		quietMode, _ := rootCmd.PersistentFlags().GetBool("quiet")
		w := output.New(jsonMode, quietMode)

		var ce *CmdError
		if errors.As(err, &ce) {
			return w.ErrorWithDetails(ce.Err, ce.Code, ce.Details)
		}
		return w.Error(err, output.ErrGeneral)
	}
	return 0
}
