package core

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the motion and parsing parameters of the plotter. Zero
// values are filled in by applyDefaults, so a partial JSON file only needs
// to name the values it changes.
type Config struct {
	// StepDelay is the delay between pulses at full speed, in microseconds.
	StepDelay int `json:"step_delay_us"`

	// StepsPerMove is the default step count for an x/y command with no
	// argument.
	StepsPerMove int `json:"steps_per_move"`

	// CalibrationStepSize is the default jog size during manual
	// calibration.
	CalibrationStepSize int `json:"calibration_step_size"`

	// BoundaryMargin is kept clear of each calibrated extreme during
	// normal moves, in steps.
	BoundaryMargin int `json:"boundary_margin"`

	// Acceleration shaping. The per-pulse delay ramps linearly from
	// AccelMaxDelay down to AccelMinDelay over AccelRampSteps pulses, and
	// back up at the end of the move. Moves of AccelThreshold steps or
	// fewer run unshaped.
	EnableAcceleration bool `json:"enable_acceleration"`
	AccelRampSteps     int  `json:"accel_ramp_steps"`
	AccelMinDelay      int  `json:"accel_min_delay_us"`
	AccelMaxDelay      int  `json:"accel_max_delay_us"`
	AccelThreshold     int  `json:"accel_threshold"`

	// ReportEverySteps is the telemetry interval during motion, in pulses.
	// Zero disables progress reports.
	ReportEverySteps int `json:"report_every_steps"`

	// CheckSwitchEverySteps is the limit switch sampling interval during
	// multi-pulse moves. Single-pulse moves always check.
	CheckSwitchEverySteps int `json:"check_switch_every_steps"`

	// Virtual coordinate extents for the g command.
	VirtualWidth  int `json:"virtual_width"`
	VirtualHeight int `json:"virtual_height"`

	// Travel caps for automatic calibration: seeking a limit switch
	// further than this aborts the calibration.
	MaxTravelX int `json:"max_travel_x"`
	MaxTravelY int `json:"max_travel_y"`

	// CalibrationBackoff is how far a tripped switch is backed off before
	// the position is recorded, in steps.
	CalibrationBackoff int `json:"calibration_backoff"`
}

// DefaultConfig returns the configuration matching the stock hardware.
func DefaultConfig() *Config {
	cfg := &Config{EnableAcceleration: true}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig parses a JSON configuration and fills missing values with
// defaults. Note that acceleration cannot be switched off by a config
// file; it is a build-time choice surfaced here for tests.
func LoadConfig(data []byte) (*Config, error) {
	cfg := Config{EnableAcceleration: true}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigFile reads and parses a JSON configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadConfig(data)
}

func applyDefaults(cfg *Config) {
	if cfg.StepDelay == 0 {
		cfg.StepDelay = 100
	}
	if cfg.StepsPerMove == 0 {
		cfg.StepsPerMove = 4000
	}
	if cfg.CalibrationStepSize == 0 {
		cfg.CalibrationStepSize = 10
	}
	if cfg.BoundaryMargin == 0 {
		cfg.BoundaryMargin = 50
	}
	if cfg.AccelRampSteps == 0 {
		cfg.AccelRampSteps = 100
	}
	if cfg.AccelMinDelay == 0 {
		cfg.AccelMinDelay = 100
	}
	if cfg.AccelMaxDelay == 0 {
		cfg.AccelMaxDelay = 500
	}
	if cfg.AccelThreshold == 0 {
		cfg.AccelThreshold = 20
	}
	if cfg.ReportEverySteps == 0 {
		cfg.ReportEverySteps = 300
	}
	if cfg.CheckSwitchEverySteps == 0 {
		cfg.CheckSwitchEverySteps = 5
	}
	if cfg.VirtualWidth == 0 {
		cfg.VirtualWidth = 2000
	}
	if cfg.VirtualHeight == 0 {
		cfg.VirtualHeight = 1500
	}
	if cfg.MaxTravelX == 0 {
		cfg.MaxTravelX = 10500
	}
	if cfg.MaxTravelY == 0 {
		cfg.MaxTravelY = 7500
	}
	if cfg.CalibrationBackoff == 0 {
		cfg.CalibrationBackoff = 50
	}
}

// MaxTravel returns the calibration travel cap for an axis.
func (c *Config) MaxTravel(axis Axis) int {
	if axis == AxisX {
		return c.MaxTravelX
	}
	return c.MaxTravelY
}

// VirtualExtent returns the virtual coordinate extent for an axis.
func (c *Config) VirtualExtent(axis Axis) int {
	if axis == AxisX {
		return c.VirtualWidth
	}
	return c.VirtualHeight
}
