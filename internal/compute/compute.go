// Package compute selects the compute resource package used to submit pipeline jobs.
package compute

import (
	"fmt"
	"os"
	"sort"

	"github.com/user/peppy/internal/constants"
	"github.com/user/peppy/internal/model"
	"gopkg.in/yaml.v3"
)

// Settings describes one compute package. Keys other than the submission
// template and command are kept in Extra as decoded, nested values included.
type Settings struct {
	SubmissionTemplate string                 `yaml:"submission_template" json:"submission_template"`
	SubmissionCommand  string                 `yaml:"submission_command" json:"submission_command"`
	Extra              map[string]interface{} `yaml:",inline" json:"extra,omitempty"`
}

// Packages maps package names to their settings.
type Packages map[string]Settings

// Select returns the named package. An empty name selects the default package.
func (p Packages) Select(name string) (Settings, error) {
	if name == "" {
		name = constants.DefaultComputeResourcesName
	}
	settings, ok := p[name]
	if !ok {
		return Settings{}, model.NewUnknownComputePackageError(name)
	}
	return settings, nil
}

// HasDefault returns true if a default package is configured.
func (p Packages) HasDefault() bool {
	_, ok := p[constants.DefaultComputeResourcesName]
	return ok
}

// Names returns package names sorted, with the default package first.
func (p Packages) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		if name != constants.DefaultComputeResourcesName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if p.HasDefault() {
		names = append([]string{constants.DefaultComputeResourcesName}, names...)
	}
	return names
}

// Merge returns a copy of p with packages from other overriding same-named entries.
func (p Packages) Merge(other Packages) Packages {
	out := make(Packages, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// LoadPackages reads a compute configuration file: a mapping of package
// names to settings, the same shape as a project's compute section.
func LoadPackages(path string) (Packages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compute config: %w", err)
	}

	pkgs := Packages{}
	if err := yaml.Unmarshal(data, &pkgs); err != nil {
		return nil, fmt.Errorf("failed to parse compute config: %w", err)
	}
	return pkgs, nil
}
