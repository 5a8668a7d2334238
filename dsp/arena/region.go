package arena

// Region is a fixed-capacity float64 span with a movable length. It never
// reallocates: Resize beyond capacity is truncated.
type Region struct {
	samples []float64
}

func newRegion(capacity int) Region {
	return Region{samples: make([]float64, 0, capacity)}
}

// Samples returns the active span.
func (r *Region) Samples() []float64 {
	return r.samples
}

// Full returns the whole backing span regardless of the active length.
func (r *Region) Full() []float64 {
	return r.samples[:cap(r.samples)]
}

// Len returns the active length.
func (r *Region) Len() int {
	return len(r.samples)
}

// Cap returns the fixed capacity.
func (r *Region) Cap() int {
	return cap(r.samples)
}

// Resize sets the active length, clamped to [0, Cap], and returns it.
// Contents are left untouched.
func (r *Region) Resize(n int) int {
	n = max(0, min(n, cap(r.samples)))
	r.samples = r.samples[:n]
	return n
}

// Zero sets the active span to 0.
func (r *Region) Zero() {
	clear(r.samples)
}

// ZeroAll sets the whole backing span to 0.
func (r *Region) ZeroAll() {
	clear(r.Full())
}
