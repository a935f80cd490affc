// Package status reads the flag files pipelines leave in each sample's
// results directory.
package status

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/peppy/internal/constants"
	"github.com/user/peppy/internal/model"
)

const (
	flagExt = ".flag"

	// Unknown is reported for a sample with no flag files.
	Unknown = "unknown"
)

// Flag is a parsed flag file.
type Flag struct {
	Pipeline string
	Flag     string
	Path     string
	ModTime  time.Time
}

// FlagFileName returns the flag file name for a pipeline and flag.
func FlagFileName(pipeline, flag string) string {
	return pipeline + "_" + flag + flagExt
}

// IsFlagFile returns true if name looks like a flag file.
func IsFlagFile(name string) bool {
	return strings.HasSuffix(name, flagExt)
}

// ParseFlagFile splits a flag file name of the form <pipeline>_<flag>.flag.
func ParseFlagFile(name string) (pipeline, flag string, err error) {
	base := filepath.Base(name)
	if !IsFlagFile(base) {
		return "", "", fmt.Errorf("'%s' is not a flag file", base)
	}
	stem := strings.TrimSuffix(base, flagExt)

	idx := strings.LastIndex(stem, "_")
	if idx <= 0 || idx == len(stem)-1 {
		return "", "", model.NewInvalidFlagError(stem)
	}
	pipeline, flag = stem[:idx], stem[idx+1:]
	if !constants.IsFlag(flag) {
		return "", "", model.NewInvalidFlagError(flag)
	}
	return pipeline, flag, nil
}

// SampleDir returns the results directory of a sample.
func SampleDir(resultsDir, sampleName string) string {
	return filepath.Join(resultsDir, sampleName)
}

// ReadFlags returns the valid flags in a sample results directory. Files
// with unrecognised flags are ignored.
func ReadFlags(sampleDir string) ([]Flag, error) {
	entries, err := os.ReadDir(sampleDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sample directory: %w", err)
	}

	var flags []Flag
	for _, entry := range entries {
		if entry.IsDir() || !IsFlagFile(entry.Name()) {
			continue
		}
		pipeline, flag, err := ParseFlagFile(entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		flags = append(flags, Flag{
			Pipeline: pipeline,
			Flag:     flag,
			Path:     filepath.Join(sampleDir, entry.Name()),
			ModTime:  info.ModTime(),
		})
	}
	return flags, nil
}

// PipelineStatuses returns the most recent flag per pipeline.
func PipelineStatuses(sampleDir string) (map[string]string, error) {
	flags, err := ReadFlags(sampleDir)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]Flag)
	for _, f := range flags {
		cur, ok := latest[f.Pipeline]
		if !ok || newer(f, cur) {
			latest[f.Pipeline] = f
		}
	}

	out := make(map[string]string, len(latest))
	for p, f := range latest {
		out[p] = f.Flag
	}
	return out, nil
}

// SampleStatus returns the most recent flag across all of a sample's
// pipelines, or Unknown if there is none. Ties go to the flag listed first.
func SampleStatus(resultsDir, sampleName string) (string, error) {
	flags, err := ReadFlags(SampleDir(resultsDir, sampleName))
	if err != nil {
		return "", err
	}
	if len(flags) == 0 {
		return Unknown, nil
	}
	latest := flags[0]
	for _, f := range flags[1:] {
		if newer(f, latest) {
			latest = f
		}
	}
	return latest.Flag, nil
}

func newer(a, b Flag) bool {
	if a.ModTime.Equal(b.ModTime) {
		return precedes(a.Flag, b.Flag)
	}
	return a.ModTime.After(b.ModTime)
}

// precedes reports whether flag a comes before b in flag order.
func precedes(a, b string) bool {
	return flagRank(a) < flagRank(b)
}

func flagRank(flag string) int {
	for i, f := range constants.Flags() {
		if f == flag {
			return i
		}
	}
	return len(constants.Flags())
}

// WriteFlag creates a flag file for a pipeline, removing the pipeline's
// other flags.
func WriteFlag(sampleDir, pipeline, flag string) error {
	if !constants.IsFlag(flag) {
		return model.NewInvalidFlagError(flag)
	}
	if err := os.MkdirAll(sampleDir, 0755); err != nil {
		return fmt.Errorf("failed to create sample directory: %w", err)
	}
	for _, f := range constants.Flags() {
		if f == flag {
			continue
		}
		path := filepath.Join(sampleDir, FlagFileName(pipeline, f))
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove stale flag: %w", err)
		}
	}
	path := filepath.Join(sampleDir, FlagFileName(pipeline, flag))
	if err := os.WriteFile(path, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write flag: %w", err)
	}
	return nil
}

// Summary counts samples by status.
type Summary struct {
	Counts map[string]int
	Total  int
}

// Order returns the statuses present in the summary, in flag order, with
// Unknown last.
func (s Summary) Order() []string {
	var out []string
	for _, f := range constants.Flags() {
		if s.Counts[f] > 0 {
			out = append(out, f)
		}
	}
	if s.Counts[Unknown] > 0 {
		out = append(out, Unknown)
	}
	return out
}

// Summarize computes the status of every sample.
func Summarize(resultsDir string, samples []*model.Sample) (Summary, map[string]string, error) {
	summary := Summary{Counts: make(map[string]int)}
	bySample := make(map[string]string, len(samples))
	for _, s := range samples {
		st, err := SampleStatus(resultsDir, s.Name)
		if err != nil {
			return Summary{}, nil, err
		}
		bySample[s.Name] = st
		summary.Counts[st]++
		summary.Total++
	}
	return summary, bySample, nil
}
