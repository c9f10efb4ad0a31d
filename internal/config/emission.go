package config

import (
	"fmt"
	"time"

	"github.com/lp-farming/farming-core/internal/emission"
)

// EmissionConfig describes a decaying emission: InitialRate per second for
// the first step, lowered by Decrement on every following step down to
// Floor, which then holds forever. Rates are in reward base units.
type EmissionConfig struct {
	InitialRate  string        `mapstructure:"initial-rate"`
	Decrement    string        `mapstructure:"decrement"`
	Floor        string        `mapstructure:"floor"`
	Steps        uint64        `mapstructure:"steps"`
	StepDuration time.Duration `mapstructure:"step-duration"`
}

func (cfg *EmissionConfig) Validate() error {
	_, err := cfg.Schedule()
	return err
}

func (cfg *EmissionConfig) Schedule() (*emission.Schedule, error) {
	initial, err := parseAmount("emission initial-rate", cfg.InitialRate)
	if err != nil {
		return nil, err
	}
	floor := initial
	if cfg.Floor != "" {
		if floor, err = parseAmount("emission floor", cfg.Floor); err != nil {
			return nil, err
		}
	}
	if cfg.Steps == 0 {
		return emission.NewConstantSchedule(initial)
	}

	decrement, err := parseAmount("emission decrement", cfg.Decrement)
	if err != nil {
		return nil, err
	}
	if cfg.StepDuration < time.Second || cfg.StepDuration%time.Second != 0 {
		return nil, fmt.Errorf("emission step-duration must be a whole number of seconds, got %s", cfg.StepDuration)
	}

	schedule, err := emission.NewStepSchedule(initial, decrement, floor, cfg.Steps, uint64(cfg.StepDuration/time.Second))
	if err != nil {
		return nil, fmt.Errorf("invalid emission schedule: %w", err)
	}
	return schedule, nil
}
