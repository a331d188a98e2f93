package service

import "math"

// RollingWindow is a fixed-capacity ring buffer of scalar observations.
// When full, pushing evicts the oldest value. Not safe for concurrent
// use; ownership stays with the single collection loop.
type RollingWindow struct {
	values []float64
	head   int
	size   int
}

// NewRollingWindow creates a window holding at most capacity values.
func NewRollingWindow(capacity int) *RollingWindow {
	if capacity <= 0 {
		capacity = 1
	}
	return &RollingWindow{
		values: make([]float64, capacity),
	}
}

// Push appends a value, evicting the oldest when the window is full.
func (w *RollingWindow) Push(v float64) {
	tail := (w.head + w.size) % len(w.values)
	w.values[tail] = v

	if w.size < len(w.values) {
		w.size++
		return
	}
	// Buffer full: the slot we just wrote was the oldest value.
	w.head = (w.head + 1) % len(w.values)
}

// Len returns the number of stored observations.
func (w *RollingWindow) Len() int {
	return w.size
}

// Cap returns the window capacity.
func (w *RollingWindow) Cap() int {
	return len(w.values)
}

// Values returns a copy of the observations in insertion order,
// oldest first.
func (w *RollingWindow) Values() []float64 {
	out := make([]float64, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.values[(w.head+i)%len(w.values)]
	}
	return out
}

// Mean returns the arithmetic mean, 0 for an empty window.
func (w *RollingWindow) Mean() float64 {
	if w.size == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < w.size; i++ {
		sum += w.values[(w.head+i)%len(w.values)]
	}
	return sum / float64(w.size)
}

// StdDev returns the population standard deviation, 0 for an empty window.
func (w *RollingWindow) StdDev() float64 {
	if w.size == 0 {
		return 0
	}

	mean := w.Mean()
	var sumSq float64
	for i := 0; i < w.size; i++ {
		d := w.values[(w.head+i)%len(w.values)] - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(w.size))
}
