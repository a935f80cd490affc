package status

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/peppy/internal/model"
)

func TestParseFlagFile(t *testing.T) {
	tests := []struct {
		name     string
		pipeline string
		flag     string
	}{
		{"rnaseq_completed.flag", "rnaseq", "completed"},
		{"atac_seq_running.flag", "atac_seq", "running"},
		{"/out/results_pipeline/frog_1/wgbs_failed.flag", "wgbs", "failed"},
		{"x_partial.flag", "x", "partial"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline, flag, err := ParseFlagFile(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.pipeline, pipeline)
			assert.Equal(t, tt.flag, flag)
		})
	}

	t.Run("unknown flag", func(t *testing.T) {
		_, _, err := ParseFlagFile("rnaseq_done.flag")
		var target *model.InvalidFlagError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, "done", target.Flag)
	})

	t.Run("no pipeline", func(t *testing.T) {
		_, _, err := ParseFlagFile("completed.flag")
		assert.True(t, model.IsPeppyError(err))
	})

	t.Run("not a flag file", func(t *testing.T) {
		_, _, err := ParseFlagFile("rnaseq_completed.log")
		assert.Error(t, err)
	})
}

func TestFlagFileName(t *testing.T) {
	assert.Equal(t, "rnaseq_running.flag", FlagFileName("rnaseq", "running"))
}

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestSampleStatus(t *testing.T) {
	results := t.TempDir()
	base := time.Now().Add(-time.Hour)

	touch(t, filepath.Join(results, "frog_1", "rnaseq_running.flag"), base)
	touch(t, filepath.Join(results, "frog_1", "qc_failed.flag"), base.Add(time.Minute))
	touch(t, filepath.Join(results, "frog_1", "notes.txt"), base.Add(time.Hour))
	touch(t, filepath.Join(results, "frog_1", "qc_bogus.flag"), base.Add(time.Hour))

	t.Run("latest flag wins", func(t *testing.T) {
		st, err := SampleStatus(results, "frog_1")
		require.NoError(t, err)
		assert.Equal(t, "failed", st)
	})

	t.Run("per pipeline", func(t *testing.T) {
		statuses, err := PipelineStatuses(SampleDir(results, "frog_1"))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"rnaseq": "running", "qc": "failed"}, statuses)
	})

	t.Run("no results directory", func(t *testing.T) {
		st, err := SampleStatus(results, "frog_2")
		require.NoError(t, err)
		assert.Equal(t, Unknown, st)
	})
}

func TestWriteFlag(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frog_1")

	require.NoError(t, WriteFlag(dir, "rnaseq", "running"))
	require.NoError(t, WriteFlag(dir, "rnaseq", "completed"))

	flags, err := ReadFlags(dir)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "completed", flags[0].Flag)

	err = WriteFlag(dir, "rnaseq", "done")
	var target *model.InvalidFlagError
	assert.ErrorAs(t, err, &target)
}

func TestSummarize(t *testing.T) {
	results := t.TempDir()
	require.NoError(t, WriteFlag(SampleDir(results, "frog_1"), "rnaseq", "completed"))
	require.NoError(t, WriteFlag(SampleDir(results, "frog_2"), "rnaseq", "completed"))
	require.NoError(t, WriteFlag(SampleDir(results, "frog_3"), "rnaseq", "waiting"))

	samples := []*model.Sample{
		model.NewSample("frog_1"), model.NewSample("frog_2"),
		model.NewSample("frog_3"), model.NewSample("frog_4"),
	}
	summary, bySample, err := Summarize(results, samples)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Counts["completed"])
	assert.Equal(t, []string{"completed", "waiting", Unknown}, summary.Order())
	assert.Equal(t, "waiting", bySample["frog_3"])
	assert.Equal(t, Unknown, bySample["frog_4"])
}
