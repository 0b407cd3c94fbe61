// Package validation checks configuration structs against `validate` tags
// using go-playground/validator, reporting field names as they appear in
// config files.
//
//	type Config struct {
//	    Endpoint string `mapstructure:"endpoint" validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
//	for _, f := range validation.Fields(err) { ... }
package validation
