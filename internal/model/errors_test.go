package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeppyError_Message(t *testing.T) {
	err := NewPeppyError("x")
	assert.Contains(t, err.Error(), "x")
	assert.Contains(t, fmt.Sprint(err), "x")
}

func TestPeppyError_CatchSubtypeThroughBase(t *testing.T) {
	kinds := []error{
		NewMissingConfigSectionError("metadata"),
		NewMissingMetadataError("output_dir"),
		NewMissingSampleSheetError("samples.csv"),
		NewInvalidReadTypeError("frog_1", "triple"),
		NewSampleNotFoundError("frog_9"),
		NewUndefinedDataSourceError("frog_1", "src9"),
		NewUnknownComputePackageError("slurm"),
		NewInvalidFlagError("done"),
		NewInvalidSampleNameError(""),
		NewDuplicateSampleError("frog_1"),
	}
	for _, kind := range kinds {
		t.Run(fmt.Sprintf("%T", kind), func(t *testing.T) {
			wrapped := fmt.Errorf("loading project: %w", kind)

			var base *PeppyError
			require.True(t, errors.As(wrapped, &base))
			assert.Equal(t, kind.Error(), base.Error())
			assert.True(t, IsPeppyError(wrapped))
		})
	}
}

func TestPeppyError_CatchSpecificKind(t *testing.T) {
	err := fmt.Errorf("show: %w", NewSampleNotFoundError("frog_9"))

	var notFound *SampleNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "frog_9", notFound.Name)

	var readType *InvalidReadTypeError
	assert.False(t, errors.As(err, &readType))
}

func TestIsPeppyError_Foreign(t *testing.T) {
	assert.False(t, IsPeppyError(errors.New("disk full")))
	assert.False(t, IsPeppyError(nil))
}
