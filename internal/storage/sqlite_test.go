package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/peppy/internal/model"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(filepath.Join(t.TempDir(), "out", DefaultIndexName))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func testSamples() []*model.Sample {
	mk := func(name, protocol, toggle string) *model.Sample {
		s := model.NewSample(name)
		s.Set("protocol", protocol)
		if toggle != "" {
			s.Set("toggle", toggle)
		}
		return s
	}
	lanes := mk("frog_3", "RNA-seq", "")
	lanes.Set("lane", []string{"L001", "L002"})
	return []*model.Sample{
		mk("frog_1", "RNA-seq", "1"),
		mk("frog_2", "ATAC-seq", "0"),
		lanes,
	}
}

func TestIndex_RebuildAndList(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Rebuild("frogs", testSamples()))

	t.Run("all in sheet order", func(t *testing.T) {
		samples, err := idx.ListSamples("frogs", ListOptions{})
		require.NoError(t, err)
		require.Len(t, samples, 3)
		assert.Equal(t, "frog_1", samples[0].Sample.Name)
		assert.Equal(t, "frog_3", samples[2].Sample.Name)
		assert.False(t, samples[0].IndexedAt.IsZero())
	})

	t.Run("protocol filter", func(t *testing.T) {
		samples, err := idx.ListSamples("frogs", ListOptions{Protocol: "rna-seq"})
		require.NoError(t, err)
		assert.Len(t, samples, 2)

		samples, err = idx.ListSamples("frogs", ListOptions{Protocol: "*"})
		require.NoError(t, err)
		assert.Len(t, samples, 3)
	})

	t.Run("active only", func(t *testing.T) {
		samples, err := idx.ListSamples("frogs", ListOptions{ActiveOnly: true})
		require.NoError(t, err)
		assert.Len(t, samples, 2)
	})

	t.Run("limit", func(t *testing.T) {
		samples, err := idx.ListSamples("frogs", ListOptions{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, samples, 1)
	})

	t.Run("other project is empty", func(t *testing.T) {
		samples, err := idx.ListSamples("toads", ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, samples)
	})

	t.Run("list attributes survive", func(t *testing.T) {
		s, err := idx.GetSample("frogs", "frog_3")
		require.NoError(t, err)
		assert.Equal(t, []string{"L001", "L002"}, s.Sample.Attributes["lane"])
		assert.Equal(t, "RNA-seq", s.Sample.Protocol())
	})
}

func TestIndex_GetSampleNotFound(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.GetSample("frogs", "frog_9")
	var target *model.SampleNotFoundError
	assert.ErrorAs(t, err, &target)
}

func TestIndex_Status(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Rebuild("frogs", testSamples()))

	require.NoError(t, idx.SetStatus("frogs", "frog_1", "completed"))

	samples, err := idx.ListSamples("frogs", ListOptions{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "frog_1", samples[0].Sample.Name)

	t.Run("rebuild keeps status", func(t *testing.T) {
		require.NoError(t, idx.Rebuild("frogs", testSamples()[:1]))
		s, err := idx.GetSample("frogs", "frog_1")
		require.NoError(t, err)
		assert.Equal(t, "completed", s.Status)

		n, err := idx.Count("frogs")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("unknown sample", func(t *testing.T) {
		err := idx.SetStatus("frogs", "frog_9", "running")
		var target *model.SampleNotFoundError
		assert.ErrorAs(t, err, &target)
	})
}
