package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/peppy/internal/constants"
)

var constantsCmd = &cobra.Command{
	Use:   "constants [category]",
	Short: "List the shared key and column names",
	Long: `List the constants peppy uses to read project configs and sample sheets.

Categories: compute, project, sample, other. Without a category the full
export surface is listed.

Examples:
  peppy constants
  peppy constants sample
  peppy constants --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConstants,
}

func init() {
	rootCmd.AddCommand(constantsCmd)
}

// constantEntry is one constant in --json output.
type constantEntry struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Value    constants.Value `json:"value"`
}

func runConstants(cmd *cobra.Command, args []string) error {
	names := constants.All()
	if len(args) == 1 {
		var err error
		names, err = constants.Names(args[0])
		if err != nil {
			return err
		}
	}

	entries := make([]constantEntry, 0, len(names))
	for _, name := range names {
		value, _ := constants.Lookup(name)
		category, _ := constants.CategoryOf(name)
		entries = append(entries, constantEntry{Name: name, Category: category, Value: value})
	}

	out := cmd.OutOrStdout()
	if GetJSONOutput() {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal constants: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	width := 0
	for _, e := range entries {
		if len(e.Name) > width {
			width = len(e.Name)
		}
	}

	current := ""
	for _, e := range entries {
		if e.Category != current && len(args) == 0 {
			if current != "" {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "# %s\n", e.Category)
			current = e.Category
		}
		value := e.Value.String()
		if e.Value.IsList() {
			value = "[" + strings.Join(e.Value.List(), ", ") + "]"
		}
		fmt.Fprintf(out, "%-*s  %s\n", width, e.Name, value)
	}
	return nil
}
