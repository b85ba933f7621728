package config

import (
	"errors"
)

// ErrInvalidConfig wraps every rejected setting: an empty addr, a negative
// predict_max_retries, or a non-positive timeout.
var ErrInvalidConfig = errors.New("invalid fitscore config")

// ErrLoadConfig wraps failures reading the FITSCORE_CONFIG file or the
// FITSCORE_* environment.
var ErrLoadConfig = errors.New("load fitscore config")
