package interp

// Linear2 interpolates between x0 (t = 0) and x1 (t = 1).
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// At reads buf at fractional index pos with linear interpolation. The last
// sample and anything outside the buffer read as 0, so a caller never needs
// a guard sample.
func At(buf []float64, pos float64) float64 {
	if pos < 0 {
		return 0
	}
	idx := int(pos)
	if idx >= len(buf)-1 {
		return 0
	}
	return Linear2(pos-float64(idx), buf[idx], buf[idx+1])
}
