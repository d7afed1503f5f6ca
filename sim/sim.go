// Package sim provides an in-memory implementation of the plotter's
// hardware driver for tests and offline tooling. It records every pulse,
// tracks the net displacement of each motor channel, and lets callers
// script limit switch trips at step positions.
package sim

import (
	"time"

	"penplot/core"
)

// Driver is a simulated core.Driver.
type Driver struct {
	// PulseCount is the raw number of step pulses issued per channel.
	PulseCount [core.NumAxes]int

	// Net is the net displacement per channel: each pulse moves one step
	// in the channel's current direction.
	Net [core.NumAxes]int

	// Delays records the DelayMicros value after each pulse pair, in
	// order. Useful for checking acceleration profiles.
	Delays []int

	// Enabled is the driver-enable state per channel.
	Enabled [core.NumAxes]bool

	// Trace, when enabled with RecordTrace, holds a Net snapshot taken
	// after every pulse.
	Trace [][core.NumAxes]int

	// RecordTrace turns pulse-by-pulse trace capture on.
	RecordTrace bool

	// Sleep makes DelayMicros actually block, so moves take real time.
	// Off by default: most tests want instant moves.
	Sleep bool

	dir    [core.NumAxes]core.Direction
	trip   [core.NumAxes][2]tripPoint
	forced [core.NumAxes][2]bool
}

type tripPoint struct {
	set bool
	at  int
}

// New returns a simulated driver with both channels pointing positive and
// no limit switches configured.
func New() *Driver {
	d := &Driver{}
	d.dir[core.AxisX] = core.DirPlus
	d.dir[core.AxisY] = core.DirPlus
	return d
}

// TripAt places the limit switch at the given end of an axis so it reads
// tripped once the channel's net displacement passes net (at or below for
// the minus end, at or above for the plus end).
func (d *Driver) TripAt(axis core.Axis, dir core.Direction, net int) {
	d.trip[axis][dirIndex(dir)] = tripPoint{set: true, at: net}
}

// ForceLimit holds a limit switch tripped (or releases it) regardless of
// position.
func (d *Driver) ForceLimit(axis core.Axis, dir core.Direction, on bool) {
	d.forced[axis][dirIndex(dir)] = on
}

func (d *Driver) SetDirection(axis core.Axis, dir core.Direction) {
	d.dir[axis] = dir
}

func (d *Driver) Pulse(axis core.Axis) {
	d.PulseCount[axis]++
	d.Net[axis] += d.dir[axis].Sign()
	if d.RecordTrace {
		d.Trace = append(d.Trace, d.Net)
	}
}

func (d *Driver) ReadLimit(axis core.Axis, dir core.Direction) bool {
	i := dirIndex(dir)
	if d.forced[axis][i] {
		return true
	}
	tp := d.trip[axis][i]
	if !tp.set {
		return false
	}
	if dir == core.DirMinus {
		return d.Net[axis] <= tp.at
	}
	return d.Net[axis] >= tp.at
}

func (d *Driver) Enable(axis core.Axis, on bool) {
	d.Enabled[axis] = on
}

func (d *Driver) DelayMicros(us int) {
	d.Delays = append(d.Delays, us)
	if d.Sleep {
		time.Sleep(time.Duration(us) * time.Microsecond)
	}
}

func dirIndex(dir core.Direction) int {
	if dir == core.DirMinus {
		return 0
	}
	return 1
}
