package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates a parameter bundle that must not be simulated.
var ErrInvalidConfig = errors.New("model: invalid configuration")

// ErrUnknownParam indicates a parameter name outside the model.
var ErrUnknownParam = errors.New("model: unknown parameter")

// ConfigError names the offending field of a rejected configuration.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
