package cli

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a project config and its sample sheets",
	Long: `Load the project strictly: the first invalid sample (undefined data
source, invalid read type, bad sample name) fails validation.

Also checks that a default compute package is configured and that every
sample has the inputs it declares as required.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validationReport is the --json output of validate.
type validationReport struct {
	Valid    bool     `json:"valid"`
	Project  string   `json:"project"`
	Samples  int      `json:"samples"`
	Warnings []string `json:"warnings,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := loadProject(true)
	if err != nil {
		return err
	}

	report := validationReport{Valid: true, Project: p.Name, Samples: len(p.Samples())}

	packages, err := computePackages(p)
	if err != nil {
		return err
	}
	if !packages.HasDefault() && len(packages) > 0 {
		report.Warnings = append(report.Warnings, "compute section has no default package")
	}
	for _, s := range p.Samples() {
		if missing := s.MissingInputs(); len(missing) > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("sample '%s' is missing required inputs %v", s.Name, missing))
		}
	}
	if len(p.Samples()) == 0 {
		report.Warnings = append(report.Warnings, "project has no samples")
	}

	for _, w := range report.Warnings {
		log.Warn(w)
	}

	out := cmd.OutOrStdout()
	if GetJSONOutput() {
		return writeJSON(out, report)
	}
	fmt.Fprintf(out, "Project '%s' is valid: %d samples", report.Project, report.Samples)
	if n := len(report.Warnings); n > 0 {
		fmt.Fprintf(out, ", %d warnings", n)
	}
	fmt.Fprintln(out)
	return nil
}
