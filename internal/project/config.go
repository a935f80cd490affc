// Package project loads project configuration documents and builds the
// samples they describe.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/peppy/internal/compute"
	"github.com/user/peppy/internal/constants"
	"github.com/user/peppy/internal/model"
	"gopkg.in/yaml.v3"
)

const (
	outputDirKey         = "output_dir"
	resultsSubdirKey     = "results_subdir"
	nameKey              = "name"
	constantsSection     = "constants"
	computeSection       = "compute"
	inputsSection        = "pipeline_inputs"
	defaultResultsSubdir = "results_pipeline"
)

// Metadata holds the metadata section of a project config. Paths are
// absolute after loading.
type Metadata struct {
	Name                string
	SampleAnnotation    string
	SampleSubannotation string
	OutputDir           string
	ResultsSubdir       string
	Extra               map[string]string
}

// Inputs lists the attributes a protocol's pipeline reads.
type Inputs struct {
	Required []string `yaml:"required"`
	All      []string `yaml:"all"`
}

// Config is a parsed project configuration document.
type Config struct {
	Path              string
	Metadata          Metadata
	DataSources       map[string]string
	DerivedAttributes []string
	ImpliedAttributes map[string]map[string]map[string]string
	Constants         map[string]string
	Compute           compute.Packages
	PipelineInputs    map[string]Inputs

	sections []string
}

// LoadConfig reads and parses the project config at path.
func LoadConfig(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}

	return ParseConfig(data, absPath)
}

// ParseConfig parses a project config document. path is used to resolve
// relative paths and need not exist.
func ParseConfig(data []byte, path string) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}

	sections, order, err := topLevelSections(&doc)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Path:              path,
		DataSources:       map[string]string{},
		ImpliedAttributes: map[string]map[string]map[string]string{},
		Constants:         map[string]string{},
		Compute:           compute.Packages{},
		PipelineInputs:    map[string]Inputs{},
		sections:          order,
	}

	metaNode, ok := sections[constants.MetadataKey]
	if !ok {
		return nil, model.NewMissingConfigSectionError(constants.MetadataKey)
	}
	if err := cfg.decodeMetadata(metaNode); err != nil {
		return nil, err
	}

	if node, ok := sections[constants.DataSourcesSection]; ok {
		if err := node.Decode(&cfg.DataSources); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", constants.DataSourcesSection, err)
		}
	}
	if node, ok := sections[constants.DerivationsDeclaration]; ok {
		if err := decodeStringList(node, &cfg.DerivedAttributes); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", constants.DerivationsDeclaration, err)
		}
	}
	if node, ok := sections[constants.ImplicationsDeclaration]; ok {
		if err := node.Decode(&cfg.ImpliedAttributes); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", constants.ImplicationsDeclaration, err)
		}
	}
	if node, ok := sections[constantsSection]; ok {
		if err := node.Decode(&cfg.Constants); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", constantsSection, err)
		}
	}
	if node, ok := sections[computeSection]; ok {
		if err := node.Decode(&cfg.Compute); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", computeSection, err)
		}
	}
	if node, ok := sections[inputsSection]; ok {
		if err := node.Decode(&cfg.PipelineInputs); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", inputsSection, err)
		}
	}

	return cfg, nil
}

// topLevelSections indexes the document's top-level mapping by key,
// preserving key order.
func topLevelSections(doc *yaml.Node) (map[string]*yaml.Node, []string, error) {
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return map[string]*yaml.Node{}, nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("project config must be a mapping")
	}

	sections := make(map[string]*yaml.Node, len(root.Content)/2)
	order := make([]string, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		sections[key] = root.Content[i+1]
		order = append(order, key)
	}
	return sections, order, nil
}

// decodeStringList accepts either a sequence or a single scalar.
func decodeStringList(node *yaml.Node, out *[]string) error {
	if node.Kind == yaml.ScalarNode {
		*out = []string{node.Value}
		return nil
	}
	return node.Decode(out)
}

func (c *Config) decodeMetadata(node *yaml.Node) error {
	var raw map[string]interface{}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode %s: %w", constants.MetadataKey, err)
	}

	get := func(key string) string {
		v, ok := raw[key]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}

	meta := Metadata{
		Name:                get(nameKey),
		SampleAnnotation:    get(constants.SampleAnnotationsKey),
		SampleSubannotation: get(constants.SampleSubannotationsKey),
		OutputDir:           get(outputDirKey),
		ResultsSubdir:       get(resultsSubdirKey),
		Extra:               map[string]string{},
	}

	if meta.SampleAnnotation == "" {
		return model.NewMissingMetadataError(constants.SampleAnnotationsKey)
	}
	if meta.OutputDir == "" {
		return model.NewMissingMetadataError(outputDirKey)
	}
	if meta.ResultsSubdir == "" {
		meta.ResultsSubdir = defaultResultsSubdir
	}
	if meta.Name == "" {
		base := filepath.Base(c.Path)
		meta.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	baseDir := filepath.Dir(c.Path)
	meta.SampleAnnotation = c.resolvePath(baseDir, meta.SampleAnnotation)
	meta.OutputDir = c.resolvePath(baseDir, meta.OutputDir)
	if meta.SampleSubannotation != "" {
		meta.SampleSubannotation = c.resolvePath(baseDir, meta.SampleSubannotation)
	}

	known := map[string]bool{
		nameKey: true, constants.SampleAnnotationsKey: true, constants.SampleSubannotationsKey: true,
		outputDirKey: true, resultsSubdirKey: true,
	}
	for k := range raw {
		if !known[k] {
			meta.Extra[k] = get(k)
		}
	}

	c.Metadata = meta
	return nil
}

// resolvePath expands environment variables and ~, then makes the path
// absolute relative to baseDir.
func (c *Config) resolvePath(baseDir, p string) string {
	p = expandPath(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}

func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Sections returns the top-level section names in document order.
func (c *Config) Sections() []string {
	return append([]string(nil), c.sections...)
}

// HasSection returns true if the document defines the named section.
func (c *Config) HasSection(name string) bool {
	for _, s := range c.sections {
		if s == name {
			return true
		}
	}
	return false
}

// SampleIndependentSections returns the present sections that apply to the
// project as a whole, in their canonical order.
func (c *Config) SampleIndependentSections() []string {
	var out []string
	for _, s := range constants.SampleIndependentProjectSections() {
		if c.HasSection(s) {
			out = append(out, s)
		}
	}
	return out
}

// ResultsDir returns the directory holding per-sample pipeline results.
func (c *Config) ResultsDir() string {
	return filepath.Join(c.Metadata.OutputDir, c.Metadata.ResultsSubdir)
}

// InputsFor returns the pipeline inputs declared for protocol, falling back
// to the generic protocol entry.
func (c *Config) InputsFor(protocol string) (Inputs, bool) {
	for key, in := range c.PipelineInputs {
		if protocol != "" && strings.EqualFold(key, protocol) {
			return in, true
		}
	}
	in, ok := c.PipelineInputs[constants.GenericProtocolKey]
	return in, ok
}

// Derivations returns the attributes to derive from data sources. The
// data_source column is always derived.
func (c *Config) Derivations() []string {
	out := []string{constants.DataSourceColname}
	for _, attr := range c.DerivedAttributes {
		if attr != constants.DataSourceColname {
			out = append(out, attr)
		}
	}
	return out
}
