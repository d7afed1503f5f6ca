package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Controller owns the plotter: it assembles commands from the byte link,
// validates them against the position/limits state, and drives the motion
// engine. Exactly one command source is serviced at a time.
type Controller struct {
	cfg *Config
	drv Driver
	st  *State
	eng *Engine
	out io.Writer

	cmds chan Command
}

// NewController wires a controller around a hardware driver. Telemetry and
// status text are written to out, which is normally the same serial link
// the commands arrive on.
func NewController(cfg *Config, drv Driver, out io.Writer) *Controller {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if out == nil {
		out = io.Discard
	}
	st := &State{}
	return &Controller{
		cfg:  cfg,
		drv:  drv,
		st:   st,
		eng:  NewEngine(cfg, drv, st, out),
		out:  out,
		cmds: make(chan Command, 16),
	}
}

// State exposes the shared position/limits record.
func (c *Controller) State() *State { return c.st }

// Run services the byte stream until it ends or ctx is cancelled. Bytes
// are parsed on a reader goroutine; completed commands are dispatched here
// one at a time. A goto-class command finishing its parse while a move is
// in flight sets the cancellation token before it is queued, so it always
// logically supersedes the older move.
func (c *Controller) Run(ctx context.Context, r io.Reader) error {
	go c.readInput(ctx, r)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-c.cmds:
			if !ok {
				return nil
			}
			c.Dispatch(cmd)
		}
	}
}

func (c *Controller) readInput(ctx context.Context, r io.Reader) {
	defer close(c.cmds)

	br := bufio.NewReader(r)
	p := NewParser(c.errorf)
	for {
		ch, err := br.ReadByte()
		if err != nil {
			return
		}
		if !p.Feed(ch) {
			continue
		}
		cmd := p.Take()
		if gotoClass(cmd.Op) {
			c.st.Interrupt.Set()
		}
		select {
		case c.cmds <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

// Dispatch validates and executes one parsed command.
func (c *Controller) Dispatch(cmd Command) {
	if !cmd.Valid {
		return
	}
	debugf("dispatch: %c numArgs=%d", cmd.Op, cmd.NumArgs)

	switch cmd.Op {
	case OpMoveX:
		c.doRelativeMove(AxisX, cmd)
	case OpMoveY:
		c.doRelativeMove(AxisY, cmd)
	case OpGoto:
		c.doGoto(cmd)
	case OpCalibrate:
		c.manualCalibrate()
	case OpAutoCal:
		c.autoCalibrate()
	case OpHome:
		c.home()
	case OpStatus:
		c.doStatus()
	case OpSetOrigin:
		c.doSetOrigin()
	case OpSelfTest:
		c.selfTest()
	case OpMarkMin, OpMarkMax, OpQuit:
		c.errorf("%c is only valid during calibration", cmd.Op)
	default:
		c.errorf("unhandled command %c", cmd.Op)
	}
}

// doRelativeMove handles x/y: the signed argument sets direction and step
// count, defaulting to StepsPerMove. When calibrated, the count is trimmed
// so the target stays inside the margin bounds.
func (c *Controller) doRelativeMove(axis Axis, cmd Command) {
	n := cmd.Arg(0, c.cfg.StepsPerMove)
	if n == 0 {
		return
	}
	dir := DirectionFor(n)
	count := n
	if count < 0 {
		count = -count
	}

	if b := c.st.Bounds[axis]; b.Calibrated() {
		lo := b.Min + c.cfg.BoundaryMargin
		hi := b.Max - c.cfg.BoundaryMargin
		target := c.st.Pos[axis] + dir.Sign()*count
		if target > hi {
			count -= target - hi
		} else if target < lo {
			count -= lo - target
		}
		if count <= 0 {
			c.errorf("%s move rejected: outside working bounds", axis)
			return
		}
	}

	c.st.Interrupt.Clear()
	c.moveLeg(axis, dir, count)
}

// moveLeg runs one engine move and reconciles the cached position from the
// issued pulse count, whatever the outcome.
func (c *Controller) moveLeg(axis Axis, dir Direction, count int) (int, Outcome) {
	c.drv.Enable(AxisX, true)
	c.drv.Enable(AxisY, true)

	issued, outcome := c.eng.Step(axis, dir, count, true)
	c.st.Pos[axis] += dir.Sign() * issued

	switch outcome {
	case MoveInterrupted:
		c.printf("interrupted: %s after %d of %d steps\n", axis, issued, count)
	case MoveLimitStopped:
		c.printf("limit: %s%s stopped after %d of %d steps\n", axis, dir, issued, count)
	}
	return issued, outcome
}

// doGoto handles g: exactly two virtual coordinates, validated against the
// virtual extent, mapped to physical targets and travelled X first, then
// Y.
func (c *Controller) doGoto(cmd Command) {
	if cmd.NumArgs != 2 {
		c.errorf("g requires exactly 2 arguments, got %d", cmd.NumArgs)
		return
	}
	if !c.st.Calibrated() {
		c.errorf("g requires calibration")
		return
	}
	var target [NumAxes]int
	for axis := Axis(0); axis < NumAxes; axis++ {
		v := cmd.Args[axis]
		extent := c.cfg.VirtualExtent(axis)
		if v < 0 || v > extent {
			c.errorf("%s coordinate %d outside 0..%d", axis, v, extent)
			return
		}
		target[axis] = VirtualToPhysical(v, extent, c.st.Bounds[axis], c.cfg.BoundaryMargin)
	}

	c.st.Interrupt.Clear()
	c.gotoPhysical(target)
}

// gotoPhysical moves to a physical target, one axis at a time. The caller
// has already cleared the cancellation token; a token set during the X leg
// but not consumed by it still cancels the Y leg.
func (c *Controller) gotoPhysical(target [NumAxes]int) {
	for axis := Axis(0); axis < NumAxes; axis++ {
		if c.st.Interrupt.Pending() {
			c.printf("interrupted: %s leg skipped\n", axis)
			return
		}
		delta := target[axis] - c.st.Pos[axis]
		if delta == 0 {
			continue
		}
		count := delta
		if count < 0 {
			count = -count
		}
		if _, outcome := c.moveLeg(axis, DirectionFor(delta), count); outcome != MoveCompleted {
			return
		}
	}
	c.eng.EmitPosition(c.st.Pos)
}

// home moves to the safe position just inside the minimum corner.
func (c *Controller) home() {
	if !c.st.Calibrated() {
		c.errorf("h requires calibration")
		return
	}
	var target [NumAxes]int
	for axis := Axis(0); axis < NumAxes; axis++ {
		target[axis] = c.st.Bounds[axis].Min + c.cfg.BoundaryMargin
	}
	c.st.Interrupt.Clear()
	c.gotoPhysical(target)
}

// doStatus reports the current position and per-axis bounds.
func (c *Controller) doStatus() {
	c.eng.EmitPosition(c.st.Pos)
	for axis := Axis(0); axis < NumAxes; axis++ {
		b := c.st.Bounds[axis]
		c.printf("status: %s pos=%d bounds=[%d,%d]\n", axis, c.st.Pos[axis], b.Min, b.Max)
	}
	c.printf("status: calibrated=%v\n", c.st.Calibrated())
}

// doSetOrigin makes the current position the new origin. Calibrated
// bounds shift with it; an uncalibrated axis just has its position zeroed.
func (c *Controller) doSetOrigin() {
	for axis := Axis(0); axis < NumAxes; axis++ {
		if c.st.Bounds[axis].Calibrated() {
			c.st.Bounds[axis].Min -= c.st.Pos[axis]
			c.st.Bounds[axis].Max -= c.st.Pos[axis]
		}
		c.st.Pos[axis] = 0
	}
	c.printf("origin set\n")
}

func (c *Controller) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Controller) errorf(format string, args ...any) {
	fmt.Fprintf(c.out, "error: "+format+"\n", args...)
}
