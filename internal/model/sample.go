package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/user/peppy/internal/constants"
)

// Sample is a single row of a sample annotation sheet after the project's
// constants, subannotations, implications and derivations have been applied.
type Sample struct {
	Name       string
	Attributes map[string]interface{}
}

// NewSample creates a sample with the given name. The name is also stored
// under the sample_name attribute.
func NewSample(name string) *Sample {
	return &Sample{
		Name: name,
		Attributes: map[string]interface{}{
			constants.SampleNameColname: name,
		},
	}
}

// ValidateSampleName checks that a sample name can be used as a directory name.
func ValidateSampleName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return NewInvalidSampleNameError(name)
	}
	return nil
}

// Get returns an attribute value as a string. List values are joined with spaces.
func (s *Sample) Get(key string) string {
	v, ok := s.Attributes[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, " ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Has returns true if the attribute is set to a non-empty value.
func (s *Sample) Has(key string) bool {
	return s.Get(key) != ""
}

// Set stores an attribute value.
func (s *Sample) Set(key string, value interface{}) {
	if s.Attributes == nil {
		s.Attributes = make(map[string]interface{})
	}
	s.Attributes[key] = value
}

// Protocol returns the sample's assay protocol.
func (s *Sample) Protocol() string {
	return s.Get(constants.AssayKey)
}

// ReadType returns the sample's read type, if any.
func (s *Sample) ReadType() string {
	return s.Get("read_type")
}

// DataSource returns the sample's data_source attribute.
func (s *Sample) DataSource() string {
	return s.Get(constants.DataSourceColname)
}

// IsActive returns false only when the execution toggle is explicitly "0".
func (s *Sample) IsActive() bool {
	return strings.TrimSpace(s.Get(constants.SampleExecutionToggle)) != "0"
}

// MatchesProtocol returns true if the sample runs under protocol. The
// generic protocol key matches every sample.
func (s *Sample) MatchesProtocol(protocol string) bool {
	if protocol == constants.GenericProtocolKey {
		return true
	}
	return strings.EqualFold(s.Protocol(), protocol)
}

// SetInputs records the attribute names a pipeline requires and accepts.
func (s *Sample) SetInputs(required, all []string) {
	s.Set(constants.RequiredInputsAttrName, append([]string(nil), required...))
	s.Set(constants.AllInputsAttrName, append([]string(nil), all...))
}

// RequiredInputs returns the attribute names recorded by SetInputs as required.
func (s *Sample) RequiredInputs() []string {
	return s.list(constants.RequiredInputsAttrName)
}

// AllInputs returns every input attribute name recorded by SetInputs.
func (s *Sample) AllInputs() []string {
	return s.list(constants.AllInputsAttrName)
}

// MissingInputs returns the required inputs that have no value on the sample.
func (s *Sample) MissingInputs() []string {
	var missing []string
	for _, attr := range s.RequiredInputs() {
		if !s.Has(attr) {
			missing = append(missing, attr)
		}
	}
	return missing
}

func (s *Sample) list(key string) []string {
	v, ok := s.Attributes[key]
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case string:
		if val == "" {
			return nil
		}
		return strings.Fields(val)
	}
	return nil
}

// Keys returns the attribute names in sorted order, with sample_name first.
func (s *Sample) Keys() []string {
	keys := make([]string, 0, len(s.Attributes))
	for k := range s.Attributes {
		if k != constants.SampleNameColname {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return append([]string{constants.SampleNameColname}, keys...)
}

// MarshalJSON flattens the sample into its attribute map.
func (s *Sample) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Attributes)+1)
	for k, v := range s.Attributes {
		out[k] = v
	}
	out[constants.SampleNameColname] = s.Name
	return json.Marshal(out)
}

// UnmarshalJSON restores a sample from its flattened attribute map.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Attributes = make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if list, ok := v.([]interface{}); ok {
			strs := make([]string, len(list))
			for i, item := range list {
				strs[i] = fmt.Sprintf("%v", item)
			}
			s.Attributes[k] = strs
			continue
		}
		s.Attributes[k] = v
	}
	name, _ := raw[constants.SampleNameColname].(string)
	s.Name = name
	return nil
}
