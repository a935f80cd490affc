// Package model provides core data types for peppy.
package model

import (
	"errors"
	"fmt"
)

// PeppyError is the root of every peppy error. Library code returns one of
// the specific kinds below, each of which unwraps to a *PeppyError, so
// callers can catch the whole family with errors.As.
type PeppyError struct {
	msg string
}

// NewPeppyError creates a base error with the given message.
func NewPeppyError(msg string) *PeppyError {
	return &PeppyError{msg: msg}
}

func (e *PeppyError) Error() string {
	return e.msg
}

// IsPeppyError returns true if err is, or wraps, a peppy error.
func IsPeppyError(err error) bool {
	var pe *PeppyError
	return errors.As(err, &pe)
}

// MissingConfigSectionError is returned when a required project config section is absent.
type MissingConfigSectionError struct {
	*PeppyError
	Section string
}

// NewMissingConfigSectionError creates an error for the absent section.
func NewMissingConfigSectionError(section string) *MissingConfigSectionError {
	return &MissingConfigSectionError{
		PeppyError: NewPeppyError(fmt.Sprintf("project config is missing section '%s'", section)),
		Section:    section,
	}
}

func (e *MissingConfigSectionError) Unwrap() error { return e.PeppyError }

// MissingMetadataError is returned when a required key under metadata is absent.
type MissingMetadataError struct {
	*PeppyError
	Key string
}

// NewMissingMetadataError creates an error for the absent metadata key.
func NewMissingMetadataError(key string) *MissingMetadataError {
	return &MissingMetadataError{
		PeppyError: NewPeppyError(fmt.Sprintf("project metadata is missing '%s'", key)),
		Key:        key,
	}
}

func (e *MissingMetadataError) Unwrap() error { return e.PeppyError }

// MissingSampleSheetError is returned when a sample annotation file cannot be found.
type MissingSampleSheetError struct {
	*PeppyError
	Path string
}

// NewMissingSampleSheetError creates an error for the sheet at path.
func NewMissingSampleSheetError(path string) *MissingSampleSheetError {
	return &MissingSampleSheetError{
		PeppyError: NewPeppyError(fmt.Sprintf("sample annotation sheet '%s' not found", path)),
		Path:       path,
	}
}

func (e *MissingSampleSheetError) Unwrap() error { return e.PeppyError }

// InvalidReadTypeError is returned for a read_type outside the valid read types.
type InvalidReadTypeError struct {
	*PeppyError
	Sample   string
	ReadType string
}

// NewInvalidReadTypeError creates an error for a sample's read type.
func NewInvalidReadTypeError(sample, readType string) *InvalidReadTypeError {
	return &InvalidReadTypeError{
		PeppyError: NewPeppyError(fmt.Sprintf("sample '%s' has invalid read type '%s'", sample, readType)),
		Sample:     sample,
		ReadType:   readType,
	}
}

func (e *InvalidReadTypeError) Unwrap() error { return e.PeppyError }

// SampleNotFoundError is returned when a named sample does not exist in a project.
type SampleNotFoundError struct {
	*PeppyError
	Name string
}

// NewSampleNotFoundError creates an error for the named sample.
func NewSampleNotFoundError(name string) *SampleNotFoundError {
	return &SampleNotFoundError{
		PeppyError: NewPeppyError(fmt.Sprintf("sample '%s' not found", name)),
		Name:       name,
	}
}

func (e *SampleNotFoundError) Unwrap() error { return e.PeppyError }

// UndefinedDataSourceError is returned when a derived attribute names a
// source that data_sources does not define.
type UndefinedDataSourceError struct {
	*PeppyError
	Sample string
	Source string
}

// NewUndefinedDataSourceError creates an error for a sample's unknown source key.
func NewUndefinedDataSourceError(sample, source string) *UndefinedDataSourceError {
	return &UndefinedDataSourceError{
		PeppyError: NewPeppyError(fmt.Sprintf("sample '%s' references undefined data source '%s'", sample, source)),
		Sample:     sample,
		Source:     source,
	}
}

func (e *UndefinedDataSourceError) Unwrap() error { return e.PeppyError }

// UnknownComputePackageError is returned when a compute package is not configured.
type UnknownComputePackageError struct {
	*PeppyError
	Package string
}

// NewUnknownComputePackageError creates an error for the named package.
func NewUnknownComputePackageError(pkg string) *UnknownComputePackageError {
	return &UnknownComputePackageError{
		PeppyError: NewPeppyError(fmt.Sprintf("compute package '%s' is not defined", pkg)),
		Package:    pkg,
	}
}

func (e *UnknownComputePackageError) Unwrap() error { return e.PeppyError }

// InvalidFlagError is returned for a pipeline flag file whose flag is not recognised.
type InvalidFlagError struct {
	*PeppyError
	Flag string
}

// NewInvalidFlagError creates an error for the unrecognised flag.
func NewInvalidFlagError(flag string) *InvalidFlagError {
	return &InvalidFlagError{
		PeppyError: NewPeppyError(fmt.Sprintf("invalid pipeline flag '%s'", flag)),
		Flag:       flag,
	}
}

func (e *InvalidFlagError) Unwrap() error { return e.PeppyError }

// InvalidSampleNameError is returned for an empty or path-like sample name.
type InvalidSampleNameError struct {
	*PeppyError
	Name string
}

// NewInvalidSampleNameError creates an error for the rejected name.
func NewInvalidSampleNameError(name string) *InvalidSampleNameError {
	return &InvalidSampleNameError{
		PeppyError: NewPeppyError(fmt.Sprintf("invalid sample name '%s'", name)),
		Name:       name,
	}
}

func (e *InvalidSampleNameError) Unwrap() error { return e.PeppyError }

// DuplicateSampleError is returned when an annotation sheet names the same
// sample more than once.
type DuplicateSampleError struct {
	*PeppyError
	Name string
}

// NewDuplicateSampleError creates an error for the repeated sample name.
func NewDuplicateSampleError(name string) *DuplicateSampleError {
	return &DuplicateSampleError{
		PeppyError: NewPeppyError(fmt.Sprintf("sample '%s' appears more than once in the annotation sheet", name)),
		Name:       name,
	}
}

func (e *DuplicateSampleError) Unwrap() error { return e.PeppyError }
