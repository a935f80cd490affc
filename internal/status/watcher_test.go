package status

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects sample names passed to a ChangeFunc.
type recorder struct {
	mu      sync.Mutex
	samples []string
}

func (r *recorder) record(sample string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.samples...)
}

func TestWatcher_DetectsFlagWrite(t *testing.T) {
	results := filepath.Join(t.TempDir(), "results_pipeline")
	sampleDir := filepath.Join(results, "frog_1")
	require.NoError(t, os.MkdirAll(sampleDir, 0755))

	rec := &recorder{}
	w, err := NewWatcher(results, rec.record, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start())

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, WriteFlag(sampleDir, "rnaseq", "running"))

	assert.Eventually(t, func() bool {
		return len(rec.get()) > 0
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "frog_1", rec.get()[0])
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	results := t.TempDir()
	sampleDir := filepath.Join(results, "frog_1")
	require.NoError(t, os.MkdirAll(sampleDir, 0755))

	rec := &recorder{}
	w, err := NewWatcher(results, rec.record, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start())

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sampleDir, "pipeline.log"), []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)

	assert.Empty(t, rec.get())
}

func TestWatcher_NewSampleDirectory(t *testing.T) {
	results := t.TempDir()

	rec := &recorder{}
	w, err := NewWatcher(results, rec.record, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start())

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.MkdirAll(filepath.Join(results, "frog_2"), 0755))

	assert.Eventually(t, func() bool {
		for _, s := range rec.get() {
			if s == "frog_2" {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_Debounces(t *testing.T) {
	results := t.TempDir()
	sampleDir := filepath.Join(results, "frog_1")
	require.NoError(t, os.MkdirAll(sampleDir, 0755))

	rec := &recorder{}
	w, err := NewWatcher(results, rec.record, nil)
	require.NoError(t, err)
	w.SetDebounceInterval(200 * time.Millisecond)
	defer w.Close()
	require.NoError(t, w.Start())

	time.Sleep(50 * time.Millisecond)

	for _, flag := range []string{"waiting", "running", "completed"} {
		require.NoError(t, WriteFlag(sampleDir, "rnaseq", flag))
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	assert.Equal(t, []string{"frog_1"}, rec.get())
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), func(string) {}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())

	w.Close()
	w.Close()
}

func TestWatcher_CloseWithoutStart(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), func(string) {}, nil)
	require.NoError(t, err)
	w.Close()
}
