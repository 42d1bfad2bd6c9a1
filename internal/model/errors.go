package model

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks a caller-contract violation (unknown enum values).
// Data-quality problems are never reported through errors.
var ErrConfiguration = errors.New("configuration error")

var (
	ErrUnknownVoice    = fmt.Errorf("%w: unknown target voice", ErrConfiguration)
	ErrUnknownIndustry = fmt.Errorf("%w: unknown industry", ErrConfiguration)
)
