package core

// MapLinear maps v from the range [inMin,inMax] onto [outMin,outMax] by
// integer affine interpolation. A degenerate input range maps everything
// to outMin rather than dividing by zero; callers are expected to gate on
// calibration before relying on the result.
func MapLinear(v, inMin, inMax, outMin, outMax int) int {
	if inMax == inMin {
		return outMin
	}
	return (v-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// VirtualToPhysical maps a virtual coordinate in [0,extent] onto the
// calibrated working range of an axis, keeping margin steps clear of both
// extremes.
func VirtualToPhysical(v, extent int, b Bounds, margin int) int {
	return MapLinear(v, 0, extent, b.Min+margin, b.Max-margin)
}

// PhysicalToVirtual is the inverse mapping, used for telemetry.
func PhysicalToVirtual(p, extent int, b Bounds, margin int) int {
	return MapLinear(p, b.Min+margin, b.Max-margin, 0, extent)
}
