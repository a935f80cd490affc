package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSampleName(t *testing.T) {
	for _, name := range []string{"frog_1", "Frog-2", "sample.v3"} {
		t.Run("valid: "+name, func(t *testing.T) {
			assert.NoError(t, ValidateSampleName(name))
		})
	}

	for _, name := range []string{"", "  ", "a/b", `a\b`, ".", ".."} {
		t.Run("invalid: "+name, func(t *testing.T) {
			err := ValidateSampleName(name)
			var target *InvalidSampleNameError
			assert.ErrorAs(t, err, &target)
		})
	}
}

func TestSample_Attributes(t *testing.T) {
	s := NewSample("frog_1")
	assert.Equal(t, "frog_1", s.Get("sample_name"))

	s.Set("protocol", "RNA-seq")
	s.Set("read_type", "paired")
	s.Set("data_source", "/data/frog_1.fastq")
	s.Set("read1", []string{"a.fq", "b.fq"})

	assert.Equal(t, "RNA-seq", s.Protocol())
	assert.Equal(t, "paired", s.ReadType())
	assert.Equal(t, "/data/frog_1.fastq", s.DataSource())
	assert.Equal(t, "a.fq b.fq", s.Get("read1"))
	assert.Equal(t, "", s.Get("missing"))
	assert.False(t, s.Has("missing"))
}

func TestSample_IsActive(t *testing.T) {
	tests := []struct {
		toggle interface{}
		active bool
	}{
		{nil, true},
		{"1", true},
		{"0", false},
		{" 0 ", false},
		{"", true},
		{0, false},
	}
	for _, tt := range tests {
		s := NewSample("frog_1")
		if tt.toggle != nil {
			s.Set("toggle", tt.toggle)
		}
		assert.Equal(t, tt.active, s.IsActive(), "toggle=%v", tt.toggle)
	}
}

func TestSample_MatchesProtocol(t *testing.T) {
	s := NewSample("frog_1")
	s.Set("protocol", "ATAC-seq")

	assert.True(t, s.MatchesProtocol("atac-seq"))
	assert.True(t, s.MatchesProtocol("*"))
	assert.False(t, s.MatchesProtocol("RNA-seq"))
}

func TestSample_Inputs(t *testing.T) {
	s := NewSample("frog_1")
	s.Set("read1", "r1.fq")
	s.SetInputs([]string{"read1", "read2"}, []string{"read1", "read2", "index"})

	assert.Equal(t, []string{"read1", "read2"}, s.RequiredInputs())
	assert.Equal(t, []string{"read1", "read2", "index"}, s.AllInputs())
	assert.Equal(t, []string{"read2"}, s.MissingInputs())

	assert.Contains(t, s.Attributes, "required_inputs_attr")
	assert.Contains(t, s.Attributes, "all_inputs_attr")
}

func TestSample_Keys(t *testing.T) {
	s := NewSample("frog_1")
	s.Set("protocol", "RNA-seq")
	s.Set("genome", "hg38")

	assert.Equal(t, []string{"sample_name", "genome", "protocol"}, s.Keys())
}

func TestSample_JSON(t *testing.T) {
	s := NewSample("frog_1")
	s.Set("protocol", "RNA-seq")
	s.Set("read1", []string{"a.fq", "b.fq"})

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded Sample
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "frog_1", decoded.Name)
	assert.Equal(t, "RNA-seq", decoded.Protocol())
	assert.Equal(t, []string{"a.fq", "b.fq"}, decoded.Attributes["read1"])
}
