package core

// selfTestSteps is the jog size used by the self-test sequence. Small
// enough to be safe anywhere on the bed.
const selfTestSteps = 20

// selfTest exercises the hardware: drivers on, a short out-and-back jog on
// each axis in both directions, then a limit switch readout. On balance
// the position is unchanged unless a jog was cut short, in which case the
// reconciled position reflects what actually happened.
func (c *Controller) selfTest() {
	c.printf("selftest: start\n")
	c.drv.Enable(AxisX, true)
	c.drv.Enable(AxisY, true)

	c.st.Interrupt.Clear()
	for axis := Axis(0); axis < NumAxes; axis++ {
		for _, dir := range []Direction{DirPlus, DirMinus} {
			issued, outcome := c.eng.Step(axis, dir, selfTestSteps, false)
			c.st.Pos[axis] += dir.Sign() * issued
			if outcome != MoveCompleted {
				c.printf("selftest: %s%s %s after %d steps\n", axis, dir, outcome, issued)
			}
		}
	}

	for axis := Axis(0); axis < NumAxes; axis++ {
		c.printf("selftest: %s limits min=%v max=%v\n",
			axis, c.drv.ReadLimit(axis, DirMinus), c.drv.ReadLimit(axis, DirPlus))
	}
	c.printf("selftest: done\n")
}
