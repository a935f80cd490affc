package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/user/peppy/internal/model"
	"github.com/user/peppy/internal/project"
	"github.com/user/peppy/internal/status"
	"github.com/user/peppy/internal/storage"
)

var (
	queryProtocol string
	queryStatus   string
	queryActive   bool
	queryLimit    int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the SQLite sample index",
	Long: `Rebuild the sample index of the project and record each sample's
current pipeline status.

The index lives at $PEPPY_INDEX_PATH, or <output_dir>/peppy.db.

Examples:
  peppy index
  peppy index query --status failed`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var indexQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List samples from the index",
	Args:  cobra.NoArgs,
	RunE:  runIndexQuery,
}

func init() {
	indexQueryCmd.Flags().StringVar(&queryProtocol, "protocol", "", "Only samples with this protocol")
	indexQueryCmd.Flags().StringVar(&queryStatus, "status", "", "Only samples with this status")
	indexQueryCmd.Flags().BoolVar(&queryActive, "active", false, "Only samples toggled on")
	indexQueryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum number of samples")
	indexCmd.AddCommand(indexQueryCmd)
	rootCmd.AddCommand(indexCmd)
}

// indexPath returns the index location for a project.
func indexPath(p *project.Project) string {
	if settings.Index != "" {
		return settings.Index
	}
	return filepath.Join(p.Config.Metadata.OutputDir, storage.DefaultIndexName)
}

func openIndex(p *project.Project) (storage.Storage, error) {
	idx, err := storage.NewIndex(indexPath(p))
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return idx, nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	p, err := loadProject(false)
	if err != nil {
		return err
	}

	idx, err := openIndex(p)
	if err != nil {
		return err
	}
	defer idx.Close()

	samples := p.Samples()
	if err := idx.Rebuild(p.Name, samples); err != nil {
		return err
	}

	_, bySample, err := status.Summarize(p.Config.ResultsDir(), samples)
	if err != nil {
		return err
	}
	for _, s := range samples {
		if err := idx.SetStatus(p.Name, s.Name, bySample[s.Name]); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{"path": idx.Path(), "samples": len(samples)}).Debug("index rebuilt")

	out := cmd.OutOrStdout()
	if GetJSONOutput() {
		return writeJSON(out, map[string]interface{}{
			"project": p.Name,
			"path":    idx.Path(),
			"samples": len(samples),
		})
	}
	if !IsQuiet() {
		fmt.Fprintf(out, "Indexed %d samples of '%s' into %s\n", len(samples), p.Name, idx.Path())
	}
	return nil
}

// indexedEntry is one sample in index query --json output.
type indexedEntry struct {
	Sample *model.Sample `json:"sample"`
	Status string        `json:"status"`
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	p, err := loadProject(false)
	if err != nil {
		return err
	}

	idx, err := openIndex(p)
	if err != nil {
		return err
	}
	defer idx.Close()

	rows, err := idx.ListSamples(p.Name, storage.ListOptions{
		Protocol:   queryProtocol,
		ActiveOnly: queryActive,
		Status:     queryStatus,
		Limit:      queryLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if GetJSONOutput() {
		entries := make([]indexedEntry, 0, len(rows))
		for _, r := range rows {
			entries = append(entries, indexedEntry{Sample: r.Sample, Status: r.Status})
		}
		return writeJSON(out, entries)
	}

	if len(rows) == 0 {
		if !IsQuiet() {
			fmt.Fprintln(out, "No indexed samples found")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SAMPLE\tPROTOCOL\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Sample.Name, dash(r.Sample.Protocol()), dash(r.Status))
	}
	return w.Flush()
}
