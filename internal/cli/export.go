package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
	"github.com/ALT-F4-LLC/labelsync/internal/output"
)

type exportResult struct {
	Format string `json:"format"`
	File   string `json:"file,omitempty"`
	Count  int    `json:"count"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a repository's labels as a declared label list",
	Long: `Export reads a repository's current labels and writes them in the format
apply accepts, which is a convenient starting point for a labels file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		format, _ := cmd.Flags().GetString("format")
		filePath, _ := cmd.Flags().GetString("file")
		if format == "" {
			format = formatForFile(filePath)
		}

		switch format {
		case "json", "yaml", "csv":
		default:
			return cmdErr(
				fmt.Errorf("invalid format %q: must be one of json, yaml, csv", format),
				output.ErrValidation,
			)
		}

		client, err := newClient(cmd, cfg)
		if err != nil {
			return err
		}
		existing, err := client.ListLabels(cmd.Context())
		if err != nil {
			return remoteErr(err)
		}

		desired := toDesired(existing)
		if filePath == "" && w.JSONMode {
			w.Success(desired, "")
			return nil
		}

		data, err := encodeLabels(desired, format)
		if err != nil {
			return cmdErr(fmt.Errorf("encoding labels: %w", err), output.ErrGeneral)
		}

		if filePath == "" {
			if _, err := w.Stdout.Write(data); err != nil {
				return cmdErr(fmt.Errorf("writing output: %w", err), output.ErrGeneral)
			}
			return nil
		}

		if err := os.WriteFile(filePath, data, 0o644); err != nil {
			return cmdErr(fmt.Errorf("writing file: %w", err), output.ErrGeneral)
		}
		w.Success(exportResult{Format: format, File: filePath, Count: len(existing)},
			fmt.Sprintf("Exported %d labels to %s", len(existing), filePath))
		return nil
	},
}

func init() {
	addRepoFlags(exportCmd)
	exportCmd.Flags().StringP("format", "o", "", "Export format: json, yaml, csv (default from --file extension, else json)")
	exportCmd.Flags().StringP("file", "f", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func formatForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".csv":
		return "csv"
	default:
		return "json"
	}
}

// toDesired turns existing labels into declarations. Absent fields become
// empty strings, which the schema accepts.
func toDesired(existing []model.ExistingLabel) []model.DesiredLabel {
	desired := make([]model.DesiredLabel, 0, len(existing))
	for _, l := range existing {
		desired = append(desired, model.DesiredLabel{
			Name:        l.Name,
			Color:       l.ColorValue(),
			Description: l.DescriptionValue(),
		})
	}
	return desired
}

func encodeLabels(labels []model.DesiredLabel, format string) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(labels)
	case "csv":
		var buf bytes.Buffer
		cw := csv.NewWriter(&buf)
		if err := cw.Write([]string{"name", "color", "description"}); err != nil {
			return nil, err
		}
		for _, l := range labels {
			if err := cw.Write([]string{l.Name, l.Color, l.Description}); err != nil {
				return nil, err
			}
		}
		cw.Flush()
		return buf.Bytes(), cw.Error()
	default:
		data, err := json.MarshalIndent(labels, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}
