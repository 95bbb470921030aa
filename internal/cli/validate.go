package cli

import (
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
)

type validateResult struct {
	Count      int                  `json:"count"`
	Labels     []model.DesiredLabel `json:"labels"`
	Duplicates []string             `json:"duplicates,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the declared labels without contacting GitHub",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		desired, err := loadDesired(cmd, getCfg(cmd))
		if err != nil {
			return err
		}

		dups := duplicateNames(desired)
		for _, name := range dups {
			w.Warn("label %q is declared more than once", name)
		}

		w.Success(validateResult{
			Count:      len(desired),
			Labels:     desired,
			Duplicates: dups,
		}, fmt.Sprintf("%s valid", english.Plural(len(desired), "declared label", "")))
		return nil
	},
}

func init() {
	addLabelFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

// duplicateNames returns the names declared more than once, in order of
// their second appearance.
func duplicateNames(desired []model.DesiredLabel) []string {
	seen := make(map[string]int, len(desired))
	var dups []string
	for _, d := range desired {
		seen[d.Name]++
		if seen[d.Name] == 2 {
			dups = append(dups, d.Name)
		}
	}
	return dups
}
