package cli

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/labelsync/internal/db"
	"github.com/ALT-F4-LLC/labelsync/internal/github"
	"github.com/ALT-F4-LLC/labelsync/internal/render"
)

type versionInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	BuildDate     string `json:"build_date"`
	GoVersion     string `json:"go_version"`
	APIVersion    string `json:"github_api_version"`
	SchemaVersion int    `json:"journal_schema_version"`
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print labelsync version information",
	Annotations: map[string]string{"skipConfigFile": "true"},
	Run: func(cmd *cobra.Command, args []string) {
		info := versionInfo{
			Version:       version,
			Commit:        commit,
			BuildDate:     buildDate,
			GoVersion:     runtime.Version(),
			APIVersion:    github.APIVersion,
			SchemaVersion: db.CurrentSchemaVersion,
		}

		bold := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
		dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		msg := fmt.Sprintf("labelsync %s %s\n%s",
			render.StyledText(info.Version, bold),
			render.StyledText(fmt.Sprintf("(commit: %s, built: %s, %s)", info.Commit, info.BuildDate, info.GoVersion), dim),
			render.StyledText(fmt.Sprintf("GitHub API %s, journal schema v%d", info.APIVersion, info.SchemaVersion), dim),
		)
		getWriter(cmd).Success(info, msg)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
