package config

import "fmt"

// ConfigError reports an invalid or missing setting. It is fatal at startup and never recovered.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error: %s %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
