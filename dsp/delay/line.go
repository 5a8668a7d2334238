// Package delay provides a fixed-capacity circular line addressed by
// write-advance and read-at-offset.
package delay

import "fmt"

// Line is a circular delay line of slots of type T. Capacity is fixed at
// construction; SetLen narrows the active span without reallocating.
type Line[T any] struct {
	buffer   []T
	size     int
	writePos int
}

// New returns a line with the given capacity, all slots active.
func New[T any](capacity int) (*Line[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", capacity)
	}
	return &Line[T]{buffer: make([]T, capacity), size: capacity}, nil
}

// NewWith returns a line whose slots are initialized by fill.
func NewWith[T any](capacity int, fill func(i int) T) (*Line[T], error) {
	d, err := New[T](capacity)
	if err != nil {
		return nil, err
	}
	for i := range d.buffer {
		d.buffer[i] = fill(i)
	}
	return d, nil
}

// Len returns the number of active slots.
func (d *Line[T]) Len() int {
	return d.size
}

// Cap returns the fixed capacity.
func (d *Line[T]) Cap() int {
	return len(d.buffer)
}

// SetLen sets the number of active slots, clamped to [1, Cap], and rewinds
// the write position.
func (d *Line[T]) SetLen(n int) {
	d.size = max(1, min(n, len(d.buffer)))
	d.writePos = 0
}

// Write stores v at the write position and advances it.
func (d *Line[T]) Write(v T) {
	d.buffer[d.writePos] = v
	d.Advance()
}

// Head returns a pointer to the slot at the write position, for in-place fill.
func (d *Line[T]) Head() *T {
	return &d.buffer[d.writePos]
}

// Advance moves the write position forward by one slot.
func (d *Line[T]) Advance() {
	d.writePos++
	if d.writePos >= d.size {
		d.writePos = 0
	}
}

// At returns the slot delay positions behind the write position, where
// delay 0 is the head slot that Head exposes.
func (d *Line[T]) At(delay int) T {
	return d.buffer[d.index(delay)]
}

// Read returns the value written delay+1 writes ago; Read(0) is the most
// recent write.
func (d *Line[T]) Read(delay int) T {
	return d.buffer[d.index(delay+1)]
}

func (d *Line[T]) index(delay int) int {
	delay %= d.size
	if delay < 0 {
		delay += d.size
	}
	idx := d.writePos - delay
	if idx < 0 {
		idx += d.size
	}
	return idx
}
