package config

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func stringsToAny(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// Validate applies the cross-field rules the schema cannot express.
func (c *Config) Validate() error {
	checks := []struct {
		prefix string
		err    error
	}{
		{"processing", validation.ValidateStruct(&c.Processing,
			validation.Field(&c.Processing.Root, validation.Required),
			validation.Field(&c.Processing.Include, validation.Required, validation.Each(validation.Required)),
			validation.Field(&c.Processing.CacheFile, validation.Required),
			validation.Field(&c.Processing.BackupDir, validation.Required),
		)},
		{"metadata", validation.ValidateStruct(&c.Metadata,
			validation.Field(&c.Metadata.Delimiter, validation.Required),
		)},
		{"validation.yaml", validation.ValidateStruct(&c.Validation.YAML,
			validation.Field(&c.Validation.YAML.RequiredFields, validation.Each(validation.Required)),
			validation.Field(&c.Validation.YAML.AllowedStatuses, validation.Required, validation.Each(validation.Required)),
		)},
		{"validation.naming", validation.ValidateStruct(&c.Validation.Naming,
			validation.Field(&c.Validation.Naming.MinLength, validation.Min(1)),
			validation.Field(&c.Validation.Naming.MaxLength,
				validation.Min(c.Validation.Naming.MinLength).Error("must be no less than min_length")),
		)},
		{"fix", validation.ValidateStruct(&c.Fix,
			validation.Field(&c.Fix.DefaultStatus, validation.Required,
				validation.In(stringsToAny(c.Validation.YAML.AllowedStatuses)...).Error("must be one of validation.yaml.allowed_statuses")),
			validation.Field(&c.Fix.DefaultTag, validation.Required),
		)},
	}

	for _, chk := range checks {
		if chk.err == nil {
			continue
		}
		var verrs validation.Errors
		if errors.As(chk.err, &verrs) {
			keys := make([]string, 0, len(verrs))
			for k := range verrs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return newError(chk.prefix+"."+keys[0], verrs[keys[0]].Error())
		}
		return newError(chk.prefix, chk.err.Error())
	}
	return nil
}
