package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags and the rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.Listen); err != nil {
		return fmt.Errorf("server.listen: %w", err)
	}
	if cfg.HandleStore.Type == "badger" {
		p, _ := cfg.HandleStore.Badger["path"].(string)
		inMemory, _ := cfg.HandleStore.Badger["in_memory"].(bool)
		if p == "" && !inMemory {
			return fmt.Errorf("handle_store.badger: path is required")
		}
	}
	if cfg.Server.MaxReadSize > 1<<30 || cfg.Server.MaxWriteSize > 1<<30 {
		return fmt.Errorf("server: transfer sizes are limited to 1GiB")
	}
	return nil
}

// formatValidationError reports the first failed field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
