package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/user/peppy/internal/compute"
	"github.com/user/peppy/internal/project"
)

var computeList bool

var computeCmd = &cobra.Command{
	Use:   "compute [package]",
	Short: "Show compute package settings",
	Long: `Show the settings of a compute package from the project's compute
section. Without an argument the package named by $PEPPY_COMPUTE is shown,
which defaults to 'default'.

Packages from the file named by $PEPPY_COMPUTE_CONFIG are available too;
the project's compute section overrides packages of the same name.

Examples:
  peppy compute
  peppy compute slurm
  peppy compute --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompute,
}

func init() {
	computeCmd.Flags().BoolVar(&computeList, "list", false, "List package names")
	rootCmd.AddCommand(computeCmd)
}

func runCompute(cmd *cobra.Command, args []string) error {
	p, err := loadProject(false)
	if err != nil {
		return err
	}

	packages, err := computePackages(p)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if computeList {
		names := packages.Names()
		if GetJSONOutput() {
			if names == nil {
				names = []string{}
			}
			return writeJSON(out, names)
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	name := settings.Compute
	if len(args) == 1 {
		name = args[0]
	}
	pkg, err := packages.Select(name)
	if err != nil {
		return err
	}

	if GetJSONOutput() {
		return writeJSON(out, pkg)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "submission_template:\t%s\n", dash(pkg.SubmissionTemplate))
	fmt.Fprintf(w, "submission_command:\t%s\n", dash(pkg.SubmissionCommand))
	keys := make([]string, 0, len(pkg.Extra))
	for k := range pkg.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s:\t%s\n", k, formatSetting(pkg.Extra[k]))
	}
	return w.Flush()
}

// computePackages layers the project's compute section over the packages
// of $PEPPY_COMPUTE_CONFIG.
func computePackages(p *project.Project) (compute.Packages, error) {
	if settings.ComputeConfig == "" {
		return p.Config.Compute, nil
	}
	base, err := compute.LoadPackages(settings.ComputeConfig)
	if err != nil {
		return nil, err
	}
	return base.Merge(p.Config.Compute), nil
}

// formatSetting renders nested settings as compact JSON.
func formatSetting(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	case nil:
		return "-"
	}
	return fmt.Sprintf("%v", v)
}
