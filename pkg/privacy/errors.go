package privacy

import "fmt"

// ConfigurationError reports a required setup field missing at construction
// time. It is fatal: fix the configuration, don't retry.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("cannot find property '%s' in configuration settings", e.Field)
}
