package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/user/peppy/internal/model"
	"github.com/user/peppy/internal/status"
)

var (
	statusWatch    bool
	statusProtocol string
	statusSamples  bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize pipeline run flags",
	Long: `Read the flag files pipelines write into each sample's results directory
(<output_dir>/<results_subdir>/<sample>/<pipeline>_<flag>.flag) and count
samples by status. A sample's status is its most recent flag; samples
without flags are 'unknown'.

With --watch, keep running and print each sample whose status changes.

Examples:
  peppy status
  peppy status --samples
  peppy status --watch`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Watch for flag changes")
	statusCmd.Flags().StringVar(&statusProtocol, "protocol", "", "Only samples with this protocol")
	statusCmd.Flags().BoolVar(&statusSamples, "samples", false, "List the status of every sample")
	rootCmd.AddCommand(statusCmd)
}

// statusReport is the --json output of status.
type statusReport struct {
	Project string            `json:"project"`
	Total   int               `json:"total"`
	Counts  map[string]int    `json:"counts"`
	Samples map[string]string `json:"samples,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := loadProject(false)
	if err != nil {
		return err
	}

	samples := selectSamples(p, statusProtocol, false)
	resultsDir := p.Config.ResultsDir()

	summary, bySample, err := status.Summarize(resultsDir, samples)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if GetJSONOutput() {
		report := statusReport{Project: p.Name, Total: summary.Total, Counts: summary.Counts}
		if statusSamples {
			report.Samples = bySample
		}
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else if err := printSummary(out, p.Name, samples, summary, bySample); err != nil {
		return err
	}

	if !statusWatch {
		return nil
	}
	return watchStatus(cmd, resultsDir, samples)
}

func printSummary(out io.Writer, name string, samples []*model.Sample, summary status.Summary, bySample map[string]string) error {
	fmt.Fprintf(out, "Project '%s': %d samples\n", name, summary.Total)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, st := range summary.Order() {
		fmt.Fprintf(w, "  %s\t%d\n", st, summary.Counts[st])
	}
	if statusSamples && len(samples) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "SAMPLE\tSTATUS")
		for _, s := range samples {
			fmt.Fprintf(w, "%s\t%s\n", s.Name, bySample[s.Name])
		}
	}
	return w.Flush()
}

// watchStatus prints status changes until interrupted.
func watchStatus(cmd *cobra.Command, resultsDir string, samples []*model.Sample) error {
	known := make(map[string]bool, len(samples))
	for _, s := range samples {
		known[s.Name] = true
	}

	out := cmd.OutOrStdout()
	logger := log.WithField("results_dir", resultsDir)

	w, err := status.NewWatcher(resultsDir, func(sample string) {
		if !known[sample] {
			logger.WithField("sample", sample).Debug("ignoring flags of unknown sample")
			return
		}
		st, err := status.SampleStatus(resultsDir, sample)
		if err != nil {
			logger.WithError(err).WithField("sample", sample).Warn("failed to read sample status")
			return
		}
		fmt.Fprintf(out, "%s\t%s\n", sample, st)
	}, func(format string, args ...interface{}) {
		logger.Debugf(format, args...)
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("watching for flag changes")
	<-sigChan
	return nil
}
