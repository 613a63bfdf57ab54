package config

import "errors"

var (
	// ErrInvalidConfig marks a value rejected by Validate or by the PORT override.
	ErrInvalidConfig = errors.New("clue config: invalid value")
	// ErrLoadConfig marks a failure reading the CLUE_CONFIG file or the CLUE_* environment.
	ErrLoadConfig = errors.New("clue config: load failed")
)
