package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/labelsync/internal/config"
	"github.com/ALT-F4-LLC/labelsync/internal/db"
	"github.com/ALT-F4-LLC/labelsync/internal/output"
	"github.com/ALT-F4-LLC/labelsync/internal/render"
)

type configInfo struct {
	config.Config
	TokenSource          config.TokenSource `json:"token_source"`
	JournalExists        bool               `json:"journal_exists"`
	JournalSizeBytes     int64              `json:"journal_size_bytes"`
	JournalSchemaVersion int                `json:"journal_schema_version"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the resolved labelsync configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		auth, _ := cmd.Flags().GetString("auth")
		_, source := config.ResolveToken(auth)

		info := configInfo{Config: *cfg, TokenSource: source}

		if cfg.Journal != "" {
			stat, err := os.Stat(cfg.Journal)
			switch {
			case errors.Is(err, os.ErrNotExist):
			case err != nil:
				return cmdErr(fmt.Errorf("checking journal: %w", err), output.ErrGeneral)
			default:
				conn, err := db.Open(cfg.Journal)
				if err != nil {
					return cmdErr(fmt.Errorf("opening journal: %w", err), output.ErrGeneral)
				}
				defer conn.Close()

				info.JournalSchemaVersion, err = db.SchemaVersion(conn)
				if err != nil {
					return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
				}
				info.JournalExists = true
				info.JournalSizeBytes = stat.Size()
			}
		}

		w.Success(info, formatConfigHuman(info))
		return nil
	},
}

func init() {
	configCmd.Flags().String("auth", "", "GitHub token to report on")
	rootCmd.AddCommand(configCmd)
}

func formatValue(val string) string {
	if val == "" {
		return "(not set)"
	}
	return val
}

// configRows lists the human-readable key/value pairs shown by config.
func configRows(info configInfo) [][2]string {
	journal := formatValue(info.Journal)
	if info.Journal != "" && !info.JournalExists {
		journal += " (not created yet)"
	}

	rows := [][2]string{
		{"Config file:", formatValue(info.ConfigFile)},
		{"Owner:", formatValue(info.Owner)},
		{"Repository:", formatValue(info.Repository)},
		{"Labels file:", formatValue(info.LabelsFile)},
		{"Bandwidth:", fmt.Sprintf("%d req/s", info.Bandwidth)},
		{"API base URL:", formatValue(info.BaseURL)},
		{"Token source:", string(info.TokenSource)},
		{"Journal:", journal},
	}
	if info.JournalExists {
		rows = append(rows,
			[2]string{"Journal size:", humanize.Bytes(uint64(info.JournalSizeBytes))},
			[2]string{"Schema version:", fmt.Sprintf("%d", info.JournalSchemaVersion)},
		)
	}
	return rows
}

func formatConfigHuman(info configInfo) string {
	rows := configRows(info)

	if !render.ColorsEnabled() {
		var lines string
		for i, r := range rows {
			if i > 0 {
				lines += "\n"
			}
			lines += fmt.Sprintf("%-16s %s", r[0], r[1])
		}
		return lines
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(16)
	valStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	lines := headerStyle.Render("labelsync configuration") + "\n"
	for _, r := range rows {
		lines += fmt.Sprintf("\n  %s %s", keyStyle.Render(r[0]), valStyle.Render(r[1]))
	}
	return lines
}
