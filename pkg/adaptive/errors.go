package adaptive

import "fmt"

// ConfigurationError reports a required setup field missing at construction
// time. It is fatal: fix the configuration, don't retry.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("cannot find property '%s' in configuration settings", e.Field)
}

// TransactionError reports an unusable transaction: the id is unknown or
// expired, or an evaluate call was made before its prerequisite generate
// step. It indicates a caller bug or an expired flow, not a remote failure.
type TransactionError struct {
	Message string
}

func (e *TransactionError) Error() string { return e.Message }

// TokenError reports a failed bearer-token introspection. It is only
// produced at the introspection middleware boundary.
type TokenError struct {
	Message string
}

func (e *TokenError) Error() string { return e.Message }
