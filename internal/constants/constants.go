// Package constants provides the shared key, column and flag names used by peppy.
package constants

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned for a category name outside Categories.
var ErrUnknownCategory = errors.New("unknown constants category")

// Category names
const (
	CategoryCompute = "compute"
	CategoryProject = "project"
	CategorySample  = "sample"
	CategoryOther   = "other"
)

// Compute-related
const (
	DefaultComputeResourcesName = "default"
	SampleNameColname           = "sample_name"
)

// Project-related
const (
	DataSourcesSection      = "data_sources"
	DerivationsDeclaration  = "derived_attributes"
	ImplicationsDeclaration = "implied_attributes"
	MetadataKey             = "metadata"

	trackhubsSection = "trackhubs"
)

// Sample-related
const (
	AssayKey                = "protocol"
	DataSourceColname       = "data_source"
	SampleAnnotationsKey    = "sample_annotation"
	SampleSubannotationsKey = "sample_subannotation"
	SampleExecutionToggle   = "toggle"
	RequiredInputsAttrName  = "required_inputs_attr"
	AllInputsAttrName       = "all_inputs_attr"
)

// Other
const (
	GenericProtocolKey = "*"
)

// Pipeline status flags
const (
	FlagCompleted = "completed"
	FlagRunning   = "running"
	FlagFailed    = "failed"
	FlagWaiting   = "waiting"
	FlagPartial   = "partial"
)

// Read types
const (
	ReadTypeSingle = "single"
	ReadTypePaired = "paired"
)

// SampleIndependentProjectSections returns the project config sections that
// do not vary per sample, in declaration order.
func SampleIndependentProjectSections() []string {
	return []string{MetadataKey, DerivationsDeclaration, ImplicationsDeclaration, trackhubsSection}
}

// ValidReadTypes returns the accepted values of a sample's read_type.
func ValidReadTypes() []string {
	return []string{ReadTypeSingle, ReadTypePaired}
}

// Flags returns the pipeline status flags in precedence order.
func Flags() []string {
	return []string{FlagCompleted, FlagRunning, FlagFailed, FlagWaiting, FlagPartial}
}

// IsValidReadType reports whether rt is one of ValidReadTypes.
func IsValidReadType(rt string) bool {
	return contains(ValidReadTypes(), rt)
}

// IsFlag reports whether f is one of Flags.
func IsFlag(f string) bool {
	return contains(Flags(), f)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Value is the value of a registry entry: either a single string or an
// ordered sequence of strings.
type Value struct {
	str  string
	list []string
}

func stringValue(s string) Value {
	return Value{str: s}
}

func listValue(l []string) Value {
	return Value{list: l}
}

// IsList returns true if the value is a sequence.
func (v Value) IsList() bool {
	return v.list != nil
}

// List returns a copy of a sequence value, or nil for a string value.
func (v Value) List() []string {
	if v.list == nil {
		return nil
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

// String returns the string value, or the sequence joined with ", ".
func (v Value) String() string {
	if v.IsList() {
		return strings.Join(v.list, ", ")
	}
	return v.str
}

// MarshalJSON encodes a string value as a JSON string and a sequence as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList() {
		return json.Marshal(v.list)
	}
	return json.Marshal(v.str)
}

type entry struct {
	category string
	name     string
	value    Value
}

// registry holds every defined constant under its canonical name.
var registry = []entry{
	{CategoryCompute, "DEFAULT_COMPUTE_RESOURCES_NAME", stringValue(DefaultComputeResourcesName)},
	{CategoryCompute, "SAMPLE_NAME_COLNAME", stringValue(SampleNameColname)},

	{CategoryProject, "DATA_SOURCES_SECTION", stringValue(DataSourcesSection)},
	{CategoryProject, "DERIVATIONS_DECLARATION", stringValue(DerivationsDeclaration)},
	{CategoryProject, "IMPLICATIONS_DECLARATION", stringValue(ImplicationsDeclaration)},
	{CategoryProject, "METADATA_KEY", stringValue(MetadataKey)},
	{CategoryProject, "SAMPLE_INDEPENDENT_PROJECT_SECTIONS", listValue(SampleIndependentProjectSections())},

	{CategorySample, "ASSAY_KEY", stringValue(AssayKey)},
	{CategorySample, "DATA_SOURCE_COLNAME", stringValue(DataSourceColname)},
	{CategorySample, "SAMPLE_ANNOTATIONS_KEY", stringValue(SampleAnnotationsKey)},
	{CategorySample, "SAMPLE_SUBANNOTATIONS_KEY", stringValue(SampleSubannotationsKey)},
	{CategorySample, "SAMPLE_EXECUTION_TOGGLE", stringValue(SampleExecutionToggle)},
	{CategorySample, "VALID_READ_TYPES", listValue(ValidReadTypes())},
	{CategorySample, "REQUIRED_INPUTS_ATTR_NAME", stringValue(RequiredInputsAttrName)},
	{CategorySample, "ALL_INPUTS_ATTR_NAME", stringValue(AllInputsAttrName)},

	{CategoryOther, "FLAGS", listValue(Flags())},
	{CategoryOther, "GENERIC_PROTOCOL_KEY", stringValue(GenericProtocolKey)},
}

// Export lists, one per category.
var (
	computeConstants = []string{"DEFAULT_COMPUTE_RESOURCES_NAME", "SAMPLE_NAME_COLNAME"}

	projectConstants = []string{"DATA_SOURCES_SECTION", "DERIVATIONS_DECLARATION",
		"IMPLICATIONS_DECLARATION", "METADATA_KEY", "SAMPLE_INDEPENDENT_PROJECT_SECTIONS"}

	sampleConstants = []string{"ALL_INPUTS_ATTR_NAME", "ASSAY_KEY", "DATA_SOURCE_COLNAME",
		"REQUIRED_INPUTS_ATTR_NAME", "SAMPLE_ANNOTATIONS_KEY", "SAMPLE_EXECUTION_TOGGLE",
		"SAMPLE_SUBANNOTATIONS_KEY", "VALID_READ_TYPES"}

	otherConstants = []string{"FLAGS", "GENERIC_PROTOCOL_KEY"}
)

// ComputeConstants returns the names exported by the compute category.
func ComputeConstants() []string { return clone(computeConstants) }

// ProjectConstants returns the names exported by the project category.
func ProjectConstants() []string { return clone(projectConstants) }

// SampleConstants returns the names exported by the sample category.
func SampleConstants() []string { return clone(sampleConstants) }

// OtherConstants returns the names exported by the other category.
func OtherConstants() []string { return clone(otherConstants) }

// All returns the full export surface: the compute, project, sample and
// other lists concatenated in that order.
func All() []string {
	all := make([]string, 0, len(registry))
	all = append(all, computeConstants...)
	all = append(all, projectConstants...)
	all = append(all, sampleConstants...)
	all = append(all, otherConstants...)
	return all
}

// Categories returns the category names in export order.
func Categories() []string {
	return []string{CategoryCompute, CategoryProject, CategorySample, CategoryOther}
}

// Names returns the export list of the given category.
func Names(category string) ([]string, error) {
	switch strings.ToLower(category) {
	case CategoryCompute:
		return ComputeConstants(), nil
	case CategoryProject:
		return ProjectConstants(), nil
	case CategorySample:
		return SampleConstants(), nil
	case CategoryOther:
		return OtherConstants(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

// Lookup resolves a canonical constant name (e.g. "ASSAY_KEY") to its value.
func Lookup(name string) (Value, bool) {
	for _, e := range registry {
		if e.name == name {
			return e.value, true
		}
	}
	return Value{}, false
}

// CategoryOf returns the category a canonical name is defined in.
func CategoryOf(name string) (string, bool) {
	for _, e := range registry {
		if e.name == name {
			return e.category, true
		}
	}
	return "", false
}

// defined returns the names registered for a category, in registry order.
func defined(category string) []string {
	var names []string
	for _, e := range registry {
		if e.category == category {
			names = append(names, e.name)
		}
	}
	return names
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
