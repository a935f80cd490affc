package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/user/peppy/internal/context"
	"github.com/user/peppy/internal/model"
	"github.com/user/peppy/internal/project"
)

var (
	samplesProtocol string
	samplesAll      bool
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the samples of a project",
	Long: `List the samples described by the project's annotation sheets.

Samples whose toggle column is 0 are hidden unless --all is given.
--protocol '*' matches every protocol.

Examples:
  peppy samples
  peppy samples --protocol RNA-seq
  peppy samples --all --json`,
	Args: cobra.NoArgs,
	RunE: runSamples,
}

var showCmd = &cobra.Command{
	Use:   "show <sample>",
	Short: "Show a sample's attributes",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	samplesCmd.Flags().StringVar(&samplesProtocol, "protocol", "", "Only samples with this protocol")
	samplesCmd.Flags().BoolVar(&samplesAll, "all", false, "Include samples toggled off")
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(showCmd)
}

// loadProject resolves the project config and loads it.
func loadProject(strict bool) (*project.Project, error) {
	ctx, err := context.Resolve(GetConfigPath())
	if err != nil {
		return nil, err
	}
	return project.New(ctx.ConfigPath, project.Options{Strict: strict})
}

// selectSamples applies the --protocol and --all filters.
func selectSamples(p *project.Project, protocol string, all bool) []*model.Sample {
	var out []*model.Sample
	for _, s := range p.Samples() {
		if !all && !s.IsActive() {
			continue
		}
		if protocol != "" && !s.MatchesProtocol(protocol) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func runSamples(cmd *cobra.Command, args []string) error {
	p, err := loadProject(false)
	if err != nil {
		return err
	}

	samples := selectSamples(p, samplesProtocol, samplesAll)
	out := cmd.OutOrStdout()

	if GetJSONOutput() {
		if samples == nil {
			samples = []*model.Sample{}
		}
		return writeJSON(out, samples)
	}

	if len(samples) == 0 {
		if !IsQuiet() {
			fmt.Fprintln(out, "No samples found")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SAMPLE\tPROTOCOL\tREAD TYPE\tACTIVE")
	for _, s := range samples {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", s.Name, dash(s.Protocol()), dash(s.ReadType()), s.IsActive())
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	p, err := loadProject(false)
	if err != nil {
		return err
	}

	s, err := p.Sample(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if GetJSONOutput() {
		return writeJSON(out, s)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, k := range s.Keys() {
		fmt.Fprintf(w, "%s:\t%s\n", k, s.Get(k))
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
