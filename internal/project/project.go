package project

import (
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/user/peppy/internal/model"
)

// Options configures project loading.
type Options struct {
	// Strict fails on the first sample error instead of skipping the sample.
	Strict bool
}

// Project is a loaded project config together with its samples.
type Project struct {
	Name   string
	Config *Config

	samples  []*model.Sample
	byName   map[string]*model.Sample
	warnings []error
}

// New loads the project config at path and builds its samples.
func New(path string, opts Options) (*Project, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg, opts)
}

// FromConfig reads the annotation sheets named by cfg and builds the samples.
func FromConfig(cfg *Config, opts Options) (*Project, error) {
	table, err := ReadAnnotations(cfg.Metadata.SampleAnnotation)
	if err != nil {
		return nil, err
	}

	var sub *Table
	if cfg.Metadata.SampleSubannotation != "" {
		sub, err = ReadAnnotations(cfg.Metadata.SampleSubannotation)
		if err != nil {
			return nil, err
		}
	}

	b := &builder{cfg: cfg, strict: opts.Strict}
	samples, err := b.build(table, sub)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Name:     cfg.Metadata.Name,
		Config:   cfg,
		samples:  samples,
		byName:   make(map[string]*model.Sample, len(samples)),
		warnings: b.warnings,
	}
	for _, s := range samples {
		p.byName[s.Name] = s
	}

	log.WithFields(log.Fields{
		"project":  p.Name,
		"samples":  len(samples),
		"warnings": len(b.warnings),
	}).Debug("project loaded")

	return p, nil
}

// Samples returns every sample, in sheet order.
func (p *Project) Samples() []*model.Sample {
	return append([]*model.Sample(nil), p.samples...)
}

// ActiveSamples returns the samples whose execution toggle is not off.
func (p *Project) ActiveSamples() []*model.Sample {
	var active []*model.Sample
	for _, s := range p.samples {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active
}

// Sample returns the sample with the given name.
func (p *Project) Sample(name string) (*model.Sample, error) {
	s, ok := p.byName[name]
	if !ok {
		return nil, model.NewSampleNotFoundError(name)
	}
	return s, nil
}

// Protocols returns the distinct protocols of all samples, sorted.
func (p *Project) Protocols() []string {
	set := make(map[string]bool)
	for _, s := range p.samples {
		if proto := s.Protocol(); proto != "" {
			set[proto] = true
		}
	}
	protocols := make([]string, 0, len(set))
	for proto := range set {
		protocols = append(protocols, proto)
	}
	sort.Strings(protocols)
	return protocols
}

// SamplesByProtocol returns the samples that run under protocol. The
// generic protocol key selects every sample.
func (p *Project) SamplesByProtocol(protocol string) []*model.Sample {
	var out []*model.Sample
	for _, s := range p.samples {
		if s.MatchesProtocol(protocol) {
			out = append(out, s)
		}
	}
	return out
}

// Warnings returns the errors of samples skipped during a lenient load.
func (p *Project) Warnings() []error {
	return append([]error(nil), p.warnings...)
}
