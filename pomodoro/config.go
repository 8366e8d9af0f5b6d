package pomodoro

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds the durations of each phase and the long-break cadence,
// all in whole seconds.
type Config struct {
	FocusSeconds      int `mapstructure:"focusSeconds" validate:"required,min=1"`
	ShortBreakSeconds int `mapstructure:"shortBreakSeconds" validate:"required,min=1"`
	LongBreakSeconds  int `mapstructure:"longBreakSeconds" validate:"required,min=1"`

	// Cadence is how many focus phases complete before a long break is
	// inserted instead of a short one.
	Cadence int `mapstructure:"cadence" validate:"required,min=1"`
}

// DefaultConfig returns the classic 25/5/15 pomodoro with a long break
// every fourth focus phase.
func DefaultConfig() Config {
	return Config{
		FocusSeconds:      25 * 60,
		ShortBreakSeconds: 5 * 60,
		LongBreakSeconds:  15 * 60,
		Cadence:           4,
	}
}

var configValidate = validator.New()

// Validate rejects non-positive durations and cadence.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid pomodoro configuration: %w", err)
	}
	return nil
}

// PhaseDuration returns the configured duration of a phase in seconds.
func (c Config) PhaseDuration(p Phase) int {
	switch p {
	case PhaseShortBreak:
		return c.ShortBreakSeconds
	case PhaseLongBreak:
		return c.LongBreakSeconds
	default:
		return c.FocusSeconds
	}
}
