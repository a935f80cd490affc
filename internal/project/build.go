package project

import (
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/user/peppy/internal/constants"
	"github.com/user/peppy/internal/model"
)

// placeholderRegex matches {attribute} references in data source templates.
var placeholderRegex = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// builder turns annotation rows into samples using a project config.
type builder struct {
	cfg    *Config
	strict bool

	warnings []error
}

// build runs the sample pipeline over every row. In strict mode the first
// sample error is returned; otherwise failing samples are skipped and the
// error is recorded as a warning. A repeated sample name is an error for
// every row after the first.
func (b *builder) build(table *Table, sub *Table) ([]*model.Sample, error) {
	subRows := b.groupSubannotations(table, sub)

	samples := make([]*model.Sample, 0, len(table.Rows))
	seen := make(map[string]bool, len(table.Rows))
	for _, row := range table.Rows {
		sample, err := b.buildSample(row, subRows[row[constants.SampleNameColname]])
		if err == nil && seen[sample.Name] {
			err = model.NewDuplicateSampleError(sample.Name)
		}
		if err != nil {
			if b.strict {
				return nil, err
			}
			b.warn(err)
			continue
		}
		seen[sample.Name] = true
		samples = append(samples, sample)
	}
	return samples, nil
}

func (b *builder) warn(err error) {
	b.warnings = append(b.warnings, err)
	log.WithError(err).Warn("skipping sample")
}

func (b *builder) buildSample(row Row, subRows []Row) (*model.Sample, error) {
	name := row[constants.SampleNameColname]
	if err := model.ValidateSampleName(name); err != nil {
		return nil, err
	}

	sample := model.NewSample(name)
	for k, v := range row {
		if k == constants.SampleNameColname {
			continue
		}
		sample.Set(k, v)
	}

	b.applyConstants(sample)
	mergeSubannotations(sample, subRows)
	b.applyImplications(sample)
	if err := b.applyDerivations(sample); err != nil {
		return nil, err
	}

	if in, ok := b.cfg.InputsFor(sample.Protocol()); ok {
		all := in.All
		if len(all) == 0 {
			all = in.Required
		}
		sample.SetInputs(in.Required, all)
	}

	if rt := sample.ReadType(); rt != "" && !constants.IsValidReadType(rt) {
		return nil, model.NewInvalidReadTypeError(name, rt)
	}
	return sample, nil
}

// applyConstants fills attributes the sheet leaves unset from the
// constants section.
func (b *builder) applyConstants(sample *model.Sample) {
	for k, v := range b.cfg.Constants {
		if !sample.Has(k) {
			sample.Set(k, v)
		}
	}
}

// groupSubannotations indexes subannotation rows by sample name.
func (b *builder) groupSubannotations(table, sub *Table) map[string][]Row {
	grouped := make(map[string][]Row)
	if sub == nil {
		return grouped
	}

	known := make(map[string]bool, len(table.Rows))
	for _, row := range table.Rows {
		known[row[constants.SampleNameColname]] = true
	}

	for _, row := range sub.Rows {
		name := row[constants.SampleNameColname]
		if !known[name] {
			log.WithField("sample", name).Warn("subannotation references unknown sample")
			continue
		}
		grouped[name] = append(grouped[name], row)
	}
	return grouped
}

// mergeSubannotations turns each subannotation column into a list-valued
// attribute, one entry per subannotation row.
func mergeSubannotations(sample *model.Sample, rows []Row) {
	if len(rows) == 0 {
		return
	}
	merged := make(map[string][]string)
	for _, row := range rows {
		for k, v := range row {
			if k == constants.SampleNameColname {
				continue
			}
			merged[k] = append(merged[k], v)
		}
	}
	for k, values := range merged {
		sample.Set(k, values)
	}
}

// applyImplications sets implied attributes for every attribute/value pair
// the sample matches.
func (b *builder) applyImplications(sample *model.Sample) {
	for attr, byValue := range b.cfg.ImpliedAttributes {
		value := sample.Get(attr)
		if value == "" {
			continue
		}
		implied, ok := byValue[value]
		if !ok {
			continue
		}
		for k, v := range implied {
			sample.Set(k, v)
			log.WithFields(log.Fields{
				"sample":  sample.Name,
				"trigger": attr + "=" + value,
				"implied": k,
			}).Debug("applied implied attribute")
		}
	}
}

// applyDerivations replaces each derived attribute's data source key with
// the formatted data source template.
func (b *builder) applyDerivations(sample *model.Sample) error {
	for _, attr := range b.cfg.Derivations() {
		raw, ok := sample.Attributes[attr]
		if !ok {
			continue
		}

		switch v := raw.(type) {
		case []string:
			out := make([]string, len(v))
			for i, key := range v {
				path, err := b.derive(sample, key)
				if err != nil {
					return err
				}
				out[i] = path
			}
			sample.Set(attr, out)
		default:
			key := sample.Get(attr)
			if key == "" {
				continue
			}
			path, err := b.derive(sample, key)
			if err != nil {
				return err
			}
			sample.Set(attr, path)
		}
		log.WithFields(log.Fields{"sample": sample.Name, "attribute": attr}).Debug("derived attribute")
	}
	return nil
}

func (b *builder) derive(sample *model.Sample, key string) (string, error) {
	template, ok := b.cfg.DataSources[key]
	if !ok {
		return "", model.NewUndefinedDataSourceError(sample.Name, key)
	}
	return FormatTemplate(template, sample), nil
}

// FormatTemplate substitutes {attribute} placeholders with the sample's
// values and expands environment variables. Placeholders naming unset
// attributes are left in place.
func FormatTemplate(template string, sample *model.Sample) string {
	out := placeholderRegex.ReplaceAllStringFunc(template, func(m string) string {
		attr := strings.Trim(m, "{}")
		if !sample.Has(attr) {
			return m
		}
		return sample.Get(attr)
	})
	return expandPath(out)
}
