// Package rpi drives the plotter hardware through periph.io GPIO: step,
// direction and enable lines for the two stepper drivers, plus four limit
// switch inputs.
package rpi

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"penplot/core"
)

// AxisPins names the GPIO lines of one motor channel. Names are resolved
// through gpioreg, so "GPIO9", "9" and board aliases all work.
type AxisPins struct {
	Step   string
	Dir    string
	Enable string

	// MinLimit and MaxLimit are the limit switch inputs at each end of
	// the axis. Inputs are pulled up; a switch shorting to ground reads
	// as tripped.
	MinLimit string
	MaxLimit string
}

// Config holds the pin assignment for both channels.
type Config struct {
	X AxisPins
	Y AxisPins

	// PulseWidth is how long the step line is held high. A4988-class
	// drivers need at least 1µs.
	PulseWidth time.Duration

	// InvertEnable flips the enable line polarity. The default matches
	// A4988/DRV8825 boards, whose enable input is active low.
	InvertEnable bool
}

// DefaultConfig returns the stock wiring.
func DefaultConfig() Config {
	return Config{
		X: AxisPins{Step: "GPIO9", Dir: "GPIO8", Enable: "GPIO10", MinLimit: "GPIO17", MaxLimit: "GPIO27"},
		Y: AxisPins{Step: "GPIO5", Dir: "GPIO6", Enable: "GPIO7", MinLimit: "GPIO22", MaxLimit: "GPIO23"},
		PulseWidth: 2 * time.Microsecond,
	}
}

// Driver implements core.Driver on real pins.
type Driver struct {
	step   [core.NumAxes]gpio.PinOut
	dir    [core.NumAxes]gpio.PinOut
	enable [core.NumAxes]gpio.PinOut
	limit  [core.NumAxes][2]gpio.PinIn

	pulseWidth   time.Duration
	invertEnable bool
}

// Open initializes periph and claims the configured pins.
func Open(cfg Config) (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}

	d := &Driver{
		pulseWidth:   cfg.PulseWidth,
		invertEnable: cfg.InvertEnable,
	}
	if d.pulseWidth <= 0 {
		d.pulseWidth = 2 * time.Microsecond
	}

	for axis, pins := range map[core.Axis]AxisPins{core.AxisX: cfg.X, core.AxisY: cfg.Y} {
		var err error
		if d.step[axis], err = outPin(pins.Step); err != nil {
			return nil, err
		}
		if d.dir[axis], err = outPin(pins.Dir); err != nil {
			return nil, err
		}
		if d.enable[axis], err = outPin(pins.Enable); err != nil {
			return nil, err
		}
		if d.limit[axis][0], err = inPin(pins.MinLimit); err != nil {
			return nil, err
		}
		if d.limit[axis][1], err = inPin(pins.MaxLimit); err != nil {
			return nil, err
		}
	}

	// Motors off until the controller asks for them.
	d.Enable(core.AxisX, false)
	d.Enable(core.AxisY, false)
	return d, nil
}

func outPin(name string) (gpio.PinOut, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no such pin %q", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("pin %q: %w", name, err)
	}
	return p, nil
}

func inPin(name string) (gpio.PinIn, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no such pin %q", name)
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("pin %q: %w", name, err)
	}
	return p, nil
}

// SetDirection drives the direction line: high for positive travel.
func (d *Driver) SetDirection(axis core.Axis, dir core.Direction) {
	level := gpio.Low
	if dir == core.DirPlus {
		level = gpio.High
	}
	_ = d.dir[axis].Out(level)
}

// Pulse issues one step: rising edge, hold, falling edge. Hot-path pin
// errors are ignored; a wedged GPIO shows up as a stalled motor.
func (d *Driver) Pulse(axis core.Axis) {
	_ = d.step[axis].Out(gpio.High)
	time.Sleep(d.pulseWidth)
	_ = d.step[axis].Out(gpio.Low)
}

// ReadLimit reports whether the switch at the given end is closed. Inputs
// are pulled up, so closed-to-ground reads low.
func (d *Driver) ReadLimit(axis core.Axis, dir core.Direction) bool {
	i := 0
	if dir == core.DirPlus {
		i = 1
	}
	return d.limit[axis][i].Read() == gpio.Low
}

// Enable switches a motor driver on or off.
func (d *Driver) Enable(axis core.Axis, on bool) {
	level := gpio.Low // active low enable
	if on == d.invertEnable {
		level = gpio.High
	}
	_ = d.enable[axis].Out(level)
}

// DelayMicros busy-waits via the runtime timer. Step timing on a
// non-realtime kernel has jitter regardless; the ramp bounds absorb it.
func (d *Driver) DelayMicros(us int) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}
