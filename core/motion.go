package core

import (
	"fmt"
	"io"
)

// Outcome of a move request.
type Outcome uint8

const (
	// MoveCompleted means every requested pulse was issued.
	MoveCompleted Outcome = iota

	// MoveInterrupted means a newer command cancelled the move between
	// pulses. Already-issued pulses are not undone.
	MoveInterrupted

	// MoveLimitStopped means a limit switch tripped mid-move and the loop
	// halted early.
	MoveLimitStopped
)

func (o Outcome) String() string {
	switch o {
	case MoveCompleted:
		return "completed"
	case MoveInterrupted:
		return "interrupted"
	case MoveLimitStopped:
		return "limit-stopped"
	default:
		return "unknown"
	}
}

// Engine turns step requests into timed pulse sequences. It does not own
// the position record: callers reconcile State.Pos from the issued pulse
// count, whatever the outcome.
type Engine struct {
	drv Driver
	cfg *Config
	st  *State
	out io.Writer // telemetry sink, may be io.Discard
}

// NewEngine returns a motion engine writing telemetry to out.
func NewEngine(cfg *Config, drv Driver, st *State, out io.Writer) *Engine {
	if out == nil {
		out = io.Discard
	}
	return &Engine{drv: drv, cfg: cfg, st: st, out: out}
}

// Step issues count pulses on axis in the given direction and returns how
// many pulses were actually issued together with the outcome.
//
// Between pulses the engine consumes the cancellation token, polls the
// limit switch in the direction of travel (every pulse for single-pulse
// moves, every CheckSwitchEverySteps otherwise, and never while
// calibrating), and emits a position report every ReportEverySteps pulses.
func (e *Engine) Step(axis Axis, dir Direction, count int, accelerate bool) (int, Outcome) {
	if count <= 0 {
		return 0, MoveCompleted
	}

	e.drv.SetDirection(axis, dir)

	// Both step lines toggle together on every elementary pulse; the idle
	// channel's direction alternates so its pulses net to no displacement.
	idle := axis.Other()
	idleDir := DirPlus

	ramp := 0
	if accelerate && e.cfg.EnableAcceleration && count > e.cfg.AccelThreshold {
		ramp = e.cfg.AccelRampSteps
		if ramp > count/2 {
			ramp = count / 2
		}
	}

	for i := 0; i < count; i++ {
		if e.st.Interrupt.Take() {
			debugf("motion: %s%s interrupted after %d/%d", axis, dir, i, count)
			return i, MoveInterrupted
		}

		if !e.st.Calibrating && (count == 1 || i%e.cfg.CheckSwitchEverySteps == 0) {
			if e.drv.ReadLimit(axis, dir) {
				debugf("motion: %s%s limit stop after %d/%d", axis, dir, i, count)
				return i, MoveLimitStopped
			}
		}

		e.drv.SetDirection(idle, idleDir)
		idleDir = idleDir.Opposite()
		e.pulseBoth(axis, idle)
		e.drv.DelayMicros(e.delayFor(i, count, ramp))

		if !e.st.Calibrating && e.cfg.ReportEverySteps > 0 && (i+1)%e.cfg.ReportEverySteps == 0 {
			pos := e.st.Pos
			pos[axis] += dir.Sign() * (i + 1)
			e.EmitPosition(pos)
		}
	}
	return count, MoveCompleted
}

// pulseBoth toggles both step lines, moving channel first.
func (e *Engine) pulseBoth(axis, idle Axis) {
	e.drv.Pulse(axis)
	e.drv.Pulse(idle)
}

// delayFor returns the per-pulse delay in microseconds. With a ramp the
// profile is triangular or trapezoidal and symmetric: AccelMaxDelay at the
// first pulse, linearly down to AccelMinDelay, held, then back up so the
// final pulse is as slow as the first.
func (e *Engine) delayFor(i, count, ramp int) int {
	if ramp <= 0 {
		return e.cfg.StepDelay
	}
	span := e.cfg.AccelMaxDelay - e.cfg.AccelMinDelay
	switch {
	case i < ramp:
		return e.cfg.AccelMaxDelay - span*i/ramp
	case i >= count-ramp:
		return e.cfg.AccelMaxDelay - span*(count-1-i)/ramp
	default:
		return e.cfg.AccelMinDelay
	}
}

// EmitPosition writes a p<x>,<y> telemetry line for the given physical
// position, in virtual coordinates once the axis is calibrated and raw
// steps before that.
func (e *Engine) EmitPosition(pos [NumAxes]int) {
	var v [NumAxes]int
	for axis := AxisX; axis < NumAxes; axis++ {
		b := e.st.Bounds[axis]
		if b.Calibrated() {
			v[axis] = PhysicalToVirtual(pos[axis], e.cfg.VirtualExtent(axis), b, e.cfg.BoundaryMargin)
		} else {
			v[axis] = pos[axis]
		}
	}
	fmt.Fprintf(e.out, "p%d,%d\n", v[AxisX], v[AxisY])
}
