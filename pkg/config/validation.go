package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against the struct validate tags and
// returns the first problem found with a readable field path.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("field %s failed validation rule %q (value %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
		return err
	}
	return nil
}
