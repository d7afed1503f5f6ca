package core

// Axis identifies one of the two motor channels.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY

	// NumAxes is the number of motor channels.
	NumAxes = 2
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "?"
	}
}

// Other returns the opposite motor channel.
func (a Axis) Other() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

// Direction of travel along an axis.
type Direction int8

const (
	DirMinus Direction = -1
	DirPlus  Direction = 1
)

// Sign returns -1 or +1 for position arithmetic.
func (d Direction) Sign() int { return int(d) }

// Opposite returns the reversed direction.
func (d Direction) Opposite() Direction { return -d }

func (d Direction) String() string {
	if d == DirMinus {
		return "-"
	}
	return "+"
}

// DirectionFor returns the travel direction for a signed step request.
func DirectionFor(n int) Direction {
	if n < 0 {
		return DirMinus
	}
	return DirPlus
}

// Driver is the hardware abstraction the core drives. Implementations
// control the step/dir/enable lines of both stepper channels and read the
// limit switches.
//
// Hot-path methods (SetDirection, Pulse, ReadLimit, DelayMicros) return no
// error: they are called from the pulse loop and any hardware fault has to
// be handled inside the implementation. Construction is where errors
// belong.
type Driver interface {
	// SetDirection sets the direction line of one motor channel.
	SetDirection(axis Axis, dir Direction)

	// Pulse issues one electrical step on one motor channel. The core
	// always pulses both channels back to back; the two step lines toggle
	// together on every elementary pulse.
	Pulse(axis Axis)

	// ReadLimit reports whether the limit switch at the given end of the
	// axis is currently tripped.
	ReadLimit(axis Axis, dir Direction) bool

	// Enable switches the motor driver for one channel on or off.
	Enable(axis Axis, on bool)

	// DelayMicros blocks for the given number of microseconds. This is the
	// only timing primitive the pulse loop uses.
	DelayMicros(us int)
}
