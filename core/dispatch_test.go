package core

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// calibratedController returns a controller with both axes spanning
// [0,1000] and the pen at startX/startY.
func calibratedController(drv Driver, startX, startY int) (*Controller, *bytes.Buffer) {
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)
	st := c.State()
	st.Bounds[AxisX] = Bounds{Min: 0, Max: 1000}
	st.Bounds[AxisY] = Bounds{Min: 0, Max: 1000}
	st.Pos[AxisX] = startX
	st.Pos[AxisY] = startY
	return c, out
}

func run(t *testing.T, c *Controller, script string) {
	t.Helper()
	require.NoError(t, c.Run(context.Background(), strings.NewReader(script)))
}

func TestGotoMovesBothAxes(t *testing.T) {
	drv := newTestDriver()
	c, out := calibratedController(drv, 50, 50)

	run(t, c, "g200,250\n")

	st := c.State()
	// Virtual 2000x1500 maps onto the margin-trimmed range [50,950].
	assert.Equal(t, 140, st.Pos[AxisX])
	assert.Equal(t, 200, st.Pos[AxisY])
	assert.Contains(t, out.String(), "p200,250", "final position report")
	assert.True(t, drv.enabled[AxisX])
	assert.True(t, drv.enabled[AxisY])
}

func TestGotoWrongArgCount(t *testing.T) {
	drv := newTestDriver()
	c, out := calibratedController(drv, 50, 50)

	run(t, c, "g5\n")

	assert.Contains(t, out.String(), "error: g requires exactly 2 arguments")
	assert.Zero(t, drv.pulses[AxisX], "no motion on a validation error")
}

func TestGotoOutOfRange(t *testing.T) {
	drv := newTestDriver()
	c, out := calibratedController(drv, 50, 50)

	run(t, c, "g2001,0\n")

	assert.Contains(t, out.String(), "outside 0..2000")
	assert.Zero(t, drv.pulses[AxisX])
}

func TestGotoRequiresCalibration(t *testing.T) {
	drv := newTestDriver()
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)

	run(t, c, "g100,100\n")

	assert.Contains(t, out.String(), "error: g requires calibration")
	assert.Zero(t, drv.pulses[AxisX])
}

func TestRelativeMoveDefaultStepSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepsPerMove = 100
	drv := newTestDriver()
	out := &bytes.Buffer{}
	c := NewController(cfg, drv, out)

	run(t, c, "x\n")

	assert.Equal(t, 100, c.State().Pos[AxisX], "bare x must use the default step count")
}

func TestRelativeMoveNegative(t *testing.T) {
	drv := newTestDriver()
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)

	run(t, c, "x-50\n")

	assert.Equal(t, -50, c.State().Pos[AxisX])
	assert.Equal(t, 50, drv.pulses[AxisX])
}

func TestRelativeMoveClampedToBounds(t *testing.T) {
	drv := newTestDriver()
	c, _ := calibratedController(drv, 500, 500)

	run(t, c, "x600\n")

	// Target 1100 is clamped to max-margin = 950.
	assert.Equal(t, 950, c.State().Pos[AxisX])
}

func TestRelativeMoveRejectedOutsideBounds(t *testing.T) {
	drv := newTestDriver()
	c, out := calibratedController(drv, 950, 500)

	run(t, c, "x10\n")

	assert.Contains(t, out.String(), "error: x move rejected")
	assert.Equal(t, 950, c.State().Pos[AxisX])
	assert.Zero(t, drv.pulses[AxisX])
}

func TestRelativeMoveUncalibratedIsUnbounded(t *testing.T) {
	drv := newTestDriver()
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)

	run(t, c, "x3000\n")

	assert.Equal(t, 3000, c.State().Pos[AxisX])
}

func TestMoveStoppedByLimitReconcilesPosition(t *testing.T) {
	drv := newTestDriver()
	drv.tripAt(AxisX, DirPlus, 40)
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)

	run(t, c, "x100\n")

	// Position reflects the distance actually travelled, not the target.
	assert.Equal(t, 40, c.State().Pos[AxisX])
	assert.Contains(t, out.String(), "limit: x+ stopped after 40 of 100 steps")
}

func TestHome(t *testing.T) {
	drv := newTestDriver()
	c, _ := calibratedController(drv, 700, 300)

	run(t, c, "h\n")

	assert.Equal(t, 50, c.State().Pos[AxisX])
	assert.Equal(t, 50, c.State().Pos[AxisY])
}

func TestHomeRequiresCalibration(t *testing.T) {
	drv := newTestDriver()
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)

	run(t, c, "h\n")

	assert.Contains(t, out.String(), "error: h requires calibration")
}

func TestStatus(t *testing.T) {
	drv := newTestDriver()
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)

	run(t, c, "s\n")

	s := out.String()
	assert.Contains(t, s, "p0,0")
	assert.Contains(t, s, "status: x pos=0 bounds=[0,0]")
	assert.Contains(t, s, "status: y pos=0 bounds=[0,0]")
	assert.Contains(t, s, "calibrated=false")
}

func TestSetOrigin(t *testing.T) {
	drv := newTestDriver()
	c, out := calibratedController(drv, 140, 200)

	run(t, c, "p\n")

	st := c.State()
	assert.Equal(t, [NumAxes]int{0, 0}, st.Pos)
	assert.Equal(t, Bounds{Min: -140, Max: 860}, st.Bounds[AxisX])
	assert.Equal(t, Bounds{Min: -200, Max: 800}, st.Bounds[AxisY])
	assert.Contains(t, out.String(), "origin set")
}

func TestSetOriginUncalibrated(t *testing.T) {
	drv := newTestDriver()
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)
	c.State().Pos[AxisX] = 30

	run(t, c, "p\n")

	st := c.State()
	assert.Zero(t, st.Pos[AxisX])
	assert.Equal(t, Bounds{}, st.Bounds[AxisX], "uncalibrated bounds stay zero")
}

func TestCalibrationOpcodesOutsideCalibration(t *testing.T) {
	drv := newTestDriver()
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)

	run(t, c, "m\nM\nq\n")

	s := out.String()
	assert.Contains(t, s, "error: m is only valid during calibration")
	assert.Contains(t, s, "error: M is only valid during calibration")
	assert.Contains(t, s, "error: q is only valid during calibration")
}

func TestSelfTest(t *testing.T) {
	drv := newTestDriver()
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)

	run(t, c, "t\n")

	s := out.String()
	assert.Contains(t, s, "selftest: start")
	assert.Contains(t, s, "selftest: done")
	assert.Contains(t, s, "selftest: x limits min=false max=false")
	// Out-and-back jogs leave the position unchanged.
	assert.Equal(t, [NumAxes]int{0, 0}, c.State().Pos)
	assert.True(t, drv.enabled[AxisX])
	assert.True(t, drv.enabled[AxisY])
}

func TestInvalidOpcodeReported(t *testing.T) {
	drv := newTestDriver()
	out := &bytes.Buffer{}
	c := NewController(DefaultConfig(), drv, out)

	run(t, c, "k1\nx5\n")

	assert.Contains(t, out.String(), "error: invalid command character")
	assert.Equal(t, 5, c.State().Pos[AxisX], "parser must recover for the next line")
}
