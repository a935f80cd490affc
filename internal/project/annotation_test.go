package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/peppy/internal/model"
)

func TestReadAnnotations_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "samples.csv")
	content := "sample_name, protocol,read_type\nfrog_1,RNA-seq,paired\n\nfrog_2,ATAC-seq\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := ReadAnnotations(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"sample_name", "protocol", "read_type"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "RNA-seq", table.Rows[0]["protocol"])
	assert.Equal(t, "", table.Rows[1]["read_type"], "short rows are padded")
}

func TestReadAnnotations_TSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "samples.tsv")
	require.NoError(t, os.WriteFile(path, []byte("sample_name\tprotocol\nfrog_1\tRNA-seq\n"), 0644))

	table, err := ReadAnnotations(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "RNA-seq", table.Rows[0]["protocol"])
}

func TestReadAnnotations_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "nope.csv")
		_, err := ReadAnnotations(path)
		var target *model.MissingSampleSheetError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, path, target.Path)
	})

	t.Run("no sample_name column", func(t *testing.T) {
		path := filepath.Join(dir, "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("name,protocol\nfrog_1,RNA-seq\n"), 0644))
		_, err := ReadAnnotations(path)
		assert.ErrorContains(t, err, "sample_name")
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0644))
		_, err := ReadAnnotations(path)
		assert.ErrorContains(t, err, "empty")
	})
}

func TestWriteReadAnnotations_RoundTrip(t *testing.T) {
	faker := gofakeit.New(42)

	table := &Table{Header: []string{"sample_name", "protocol", "organism"}}
	for i := 0; i < 20; i++ {
		table.Rows = append(table.Rows, Row{
			"sample_name": "s_" + faker.LetterN(8),
			"protocol":    faker.RandomString([]string{"RNA-seq", "ATAC-seq", "ChIP-seq"}),
			"organism":    faker.RandomString([]string{"human", "mouse"}),
		})
	}

	for _, ext := range []string{".csv", ".tsv", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "samples"+ext)
			require.NoError(t, WriteAnnotations(path, table))

			read, err := ReadAnnotations(path)
			require.NoError(t, err)
			assert.Equal(t, table.Header, read.Header)
			assert.Equal(t, table.Rows, read.Rows)
		})
	}
}
