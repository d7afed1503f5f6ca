package core

// testDriver is a minimal in-memory Driver for white-box tests. The
// richer simulator in penplot/sim cannot be imported here without a
// cycle, so this fake stays deliberately small.
type testDriver struct {
	pulses  [NumAxes]int
	net     [NumAxes]int
	dir     [NumAxes]Direction
	delays  []int
	enabled [NumAxes]bool

	// tripMin/tripMax, when non-nil, give the net position at which the
	// corresponding switch reads tripped.
	tripMin [NumAxes]*int
	tripMax [NumAxes]*int
}

func newTestDriver() *testDriver {
	return &testDriver{dir: [NumAxes]Direction{DirPlus, DirPlus}}
}

func (d *testDriver) tripAt(axis Axis, dir Direction, net int) {
	at := net
	if dir == DirMinus {
		d.tripMin[axis] = &at
	} else {
		d.tripMax[axis] = &at
	}
}

func (d *testDriver) SetDirection(axis Axis, dir Direction) { d.dir[axis] = dir }

func (d *testDriver) Pulse(axis Axis) {
	d.pulses[axis]++
	d.net[axis] += d.dir[axis].Sign()
}

func (d *testDriver) ReadLimit(axis Axis, dir Direction) bool {
	if dir == DirMinus {
		return d.tripMin[axis] != nil && d.net[axis] <= *d.tripMin[axis]
	}
	return d.tripMax[axis] != nil && d.net[axis] >= *d.tripMax[axis]
}

func (d *testDriver) Enable(axis Axis, on bool) { d.enabled[axis] = on }

func (d *testDriver) DelayMicros(us int) { d.delays = append(d.delays, us) }
