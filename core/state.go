package core

import "sync/atomic"

// Bounds is the calibrated working range of one axis, in physical step
// units. Uncalibrated axes hold the zero value.
type Bounds struct {
	Min int
	Max int
}

// Calibrated reports whether the axis has a usable, non-degenerate range.
func (b Bounds) Calibrated() bool { return b.Max > b.Min }

// Span returns the width of the range.
func (b Bounds) Span() int { return b.Max - b.Min }

// Interrupt is the cooperative cancellation token. The byte reader sets it
// when a newly parsed motion command supersedes an in-flight move; the
// pulse loop consumes it between pulses. It is the only piece of state
// shared across goroutines.
type Interrupt struct {
	flag atomic.Bool
}

// Set requests cancellation of the in-flight move, if any.
func (i *Interrupt) Set() { i.flag.Store(true) }

// Clear discards any pending cancellation request.
func (i *Interrupt) Clear() { i.flag.Store(false) }

// Pending reports whether a cancellation request is outstanding.
func (i *Interrupt) Pending() bool { return i.flag.Load() }

// Take consumes a pending cancellation request, reporting whether one was
// set.
func (i *Interrupt) Take() bool { return i.flag.Swap(false) }

// State is the shared position/limits record. Apart from Interrupt it is
// only ever touched by the dispatch goroutine, so no locking is needed.
type State struct {
	// Pos is the current position per axis, in physical steps.
	Pos [NumAxes]int

	// Bounds is the calibrated range per axis.
	Bounds [NumAxes]Bounds

	// Calibrating disables limit switch enforcement while a calibration
	// procedure is actively seeking a switch.
	Calibrating bool

	// Interrupt cancels the in-flight move.
	Interrupt Interrupt
}

// Calibrated reports whether both axes have a usable range.
func (s *State) Calibrated() bool {
	return s.Bounds[AxisX].Calibrated() && s.Bounds[AxisY].Calibrated()
}
