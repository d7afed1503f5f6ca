package core

import (
	"errors"
	"fmt"
)

// Calibration controllers. Both procedures enable calibration mode for
// their duration (so the machine is allowed to reach its switches) and
// restore normal limit enforcement on every exit path.

var (
	// ErrTravelExceeded is returned when automatic calibration travels the
	// full cap without tripping a switch.
	ErrTravelExceeded = errors.New("travel cap exceeded before limit switch")

	// ErrCalibrationAborted is returned when manual calibration quits
	// without committing.
	ErrCalibrationAborted = errors.New("calibration aborted")
)

// Automatic limit seeking uses its own ramp, shorter and coarser than the
// motion engine's: the delay steps down once per seekRampCoarse pulses.
const (
	seekRampCoarse    = 5  // pulses per delay adjustment
	seekRampDelayStep = 80 // microseconds removed per adjustment
)

// autoCalibrate seeks both limit switches on both axes, re-bases the
// coordinate system so the discovered minimum corner is the origin, and
// homes to the safe position. On a travel-cap abort, bounds and position
// already written stay as they are; they are not rolled back.
func (c *Controller) autoCalibrate() {
	if err := c.runAutoCalibration(); err != nil {
		c.errorf("auto calibration failed: %v", err)
		return
	}
	c.printf("calibration done\n")
	c.doStatus()
	c.home()
}

// runAutoCalibration performs the seek and re-base phases. After a
// successful run, each axis has Min==0, Max==span and the position sits at
// Max (the machine is physically at the backed-off maximum corner).
func (c *Controller) runAutoCalibration() error {
	c.st.Calibrating = true
	defer func() { c.st.Calibrating = false }()

	c.drv.Enable(AxisX, true)
	c.drv.Enable(AxisY, true)

	for axis := Axis(0); axis < NumAxes; axis++ {
		min, err := c.seekLimit(axis, DirMinus)
		if err != nil {
			return err
		}
		c.st.Bounds[axis].Min = min

		max, err := c.seekLimit(axis, DirPlus)
		if err != nil {
			return err
		}
		c.st.Bounds[axis].Max = max
		debugf("autocal: %s raw bounds [%d,%d]", axis, min, max)
	}

	// Re-base: the minimum corner becomes the origin.
	for axis := Axis(0); axis < NumAxes; axis++ {
		span := c.st.Bounds[axis].Span()
		c.st.Pos[axis] = span
		c.st.Bounds[axis] = Bounds{Min: 0, Max: span}
	}
	return nil
}

// seekLimit drives toward one limit switch, backs off CalibrationBackoff
// steps once it trips, and returns the resulting position. Travelling
// MaxTravel steps without a trip is fatal for the calibration.
func (c *Controller) seekLimit(axis Axis, dir Direction) (int, error) {
	c.drv.SetDirection(axis, dir)
	idle := axis.Other()
	idleDir := DirPlus

	delay := c.cfg.AccelMaxDelay
	travel := 0
	for !c.drv.ReadLimit(axis, dir) {
		if travel >= c.cfg.MaxTravel(axis) {
			return 0, fmt.Errorf("%s%s after %d steps: %w", axis, dir, travel, ErrTravelExceeded)
		}
		c.drv.SetDirection(idle, idleDir)
		idleDir = idleDir.Opposite()
		c.eng.pulseBoth(axis, idle)
		c.st.Pos[axis] += dir.Sign()
		travel++

		if travel%seekRampCoarse == 0 && delay > c.cfg.AccelMinDelay {
			delay -= seekRampDelayStep
			if delay < c.cfg.AccelMinDelay {
				delay = c.cfg.AccelMinDelay
			}
		}
		c.drv.DelayMicros(delay)
	}

	back := dir.Opposite()
	c.drv.SetDirection(axis, back)
	for i := 0; i < c.cfg.CalibrationBackoff; i++ {
		c.drv.SetDirection(idle, idleDir)
		idleDir = idleDir.Opposite()
		c.eng.pulseBoth(axis, idle)
		c.st.Pos[axis] += back.Sign()
		c.drv.DelayMicros(c.cfg.AccelMaxDelay)
	}
	return c.st.Pos[axis], nil
}

// manualCalibrate runs the mark-based procedure: it takes over the command
// stream, accumulating jogs against a local running offset. Mark-min
// commits the temporary minimum corner, mark-max commits the maximum and
// completes the procedure, writing the global bounds and position. Quit
// aborts unconditionally, disabling the drivers and committing nothing.
func (c *Controller) manualCalibrate() {
	if err := c.runManualCalibration(); err != nil {
		c.errorf("manual calibration: %v", err)
		return
	}
	c.printf("calibration done\n")
	c.doStatus()
}

func (c *Controller) runManualCalibration() error {
	c.st.Calibrating = true
	defer func() { c.st.Calibrating = false }()

	c.drv.Enable(AxisX, true)
	c.drv.Enable(AxisY, true)
	c.printf("calibration: jog with x/y, m marks min, M marks max, q aborts\n")

	var local, tempMin, tempMax [NumAxes]int
	markedMin := false

	for cmd := range c.cmds {
		switch cmd.Op {
		case OpMoveX, OpMoveY:
			axis := AxisX
			if cmd.Op == OpMoveY {
				axis = AxisY
			}
			n := cmd.Arg(0, c.cfg.CalibrationStepSize)
			if n == 0 {
				continue
			}
			dir := DirectionFor(n)
			count := n
			if count < 0 {
				count = -count
			}
			// Jogs are unshaped and unbounded: limit enforcement is off
			// and the operator is watching the hardware.
			c.st.Interrupt.Clear()
			issued, _ := c.eng.Step(axis, dir, count, false)
			local[axis] += dir.Sign() * issued

		case OpMarkMin:
			tempMin = local
			markedMin = true
			c.printf("marked min at %d,%d\n", local[AxisX], local[AxisY])

		case OpMarkMax:
			if !markedMin {
				c.errorf("mark minimum before maximum")
				continue
			}
			tempMax = local
			c.printf("marked max at %d,%d\n", local[AxisX], local[AxisY])
			// Commit. No ordering check between the marks: downstream
			// logic must not assume a positive span.
			for axis := Axis(0); axis < NumAxes; axis++ {
				c.st.Bounds[axis] = Bounds{Min: tempMin[axis], Max: tempMax[axis]}
				c.st.Pos[axis] = local[axis]
			}
			return nil

		case OpQuit:
			c.drv.Enable(AxisX, false)
			c.drv.Enable(AxisY, false)
			return ErrCalibrationAborted

		case OpStatus:
			c.printf("calibration: offset %d,%d\n", local[AxisX], local[AxisY])

		default:
			c.errorf("%c is unavailable during calibration", cmd.Op)
		}
	}
	return fmt.Errorf("input closed: %w", ErrCalibrationAborted)
}
