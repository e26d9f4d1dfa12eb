package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownSetting indicates a key that cursorkeep does not recognize.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrTypeMismatch indicates a value of the wrong type for a setting.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates a value outside the allowed range or set.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNoConfigFile indicates Set or Watch was used without a config file.
	ErrNoConfigFile = errors.New("no config file configured")
)

// SettingError reports a rejected value for one setting.
type SettingError struct {
	Key   string
	Value any
	Err   error
}

// Error implements the error interface.
func (e *SettingError) Error() string {
	return fmt.Sprintf("setting %s = %v: %v", e.Key, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *SettingError) Unwrap() error {
	return e.Err
}
