// Package stats holds the numeric helpers shared by spread scoring and backtest reporting.
package stats

import "math"

// Rolling tracks the trailing window of the last Size observations in a circular buffer.
// Mean and the sum of squared deviations are updated in O(1) per Push.
type Rolling struct {
	buf   []float64
	next  int
	count int
	mean  float64
	m2    float64

	// run counts identical consecutive values ending at the newest one. Once it spans the
	// whole window the variance is exactly zero, whatever rounding left in m2.
	last float64
	run  int
}

// NewRolling allocates a window holding size observations. Sizes below one are raised to one.
func NewRolling(size int) *Rolling {
	if size < 1 {
		size = 1
	}
	return &Rolling{buf: make([]float64, size)}
}

// Size returns the window capacity.
func (r *Rolling) Size() int { return len(r.buf) }

// Len returns how many observations the window currently holds.
func (r *Rolling) Len() int { return r.count }

// Full reports whether the window holds Size observations.
func (r *Rolling) Full() bool { return r.count == len(r.buf) }

// Push adds x, evicting the oldest observation once the window is full.
func (r *Rolling) Push(x float64) {
	if r.count > 0 && x == r.last {
		r.run++
	} else {
		r.run = 1
	}
	r.last = x

	size := len(r.buf)
	if r.count < size {
		r.buf[r.next] = x
		r.next = (r.next + 1) % size
		r.count++
		delta := x - r.mean
		r.mean += delta / float64(r.count)
		r.m2 += delta * (x - r.mean)
		return
	}

	old := r.buf[r.next]
	r.buf[r.next] = x
	r.next = (r.next + 1) % size
	prevMean := r.mean
	r.mean += (x - old) / float64(size)
	r.m2 += (x - old) * (x - r.mean + old - prevMean)
	if r.m2 < 0 {
		r.m2 = 0
	}
}

// Mean returns the window mean, or false when the window is empty.
func (r *Rolling) Mean() (float64, bool) {
	if r.count == 0 {
		return 0, false
	}
	return r.mean, true
}

// Variance returns the sample variance (n-1 denominator), or false with fewer than two observations.
func (r *Rolling) Variance() (float64, bool) {
	if r.count < 2 {
		return 0, false
	}
	if r.run >= r.count {
		return 0, true
	}
	return r.m2 / float64(r.count-1), true
}

// StdDev returns the sample standard deviation, or false with fewer than two observations.
func (r *Rolling) StdDev() (float64, bool) {
	v, ok := r.Variance()
	if !ok {
		return 0, false
	}
	return math.Sqrt(v), true
}

// Values returns the window contents oldest first.
func (r *Rolling) Values() []float64 {
	out := make([]float64, 0, r.count)
	start := 0
	if r.Full() {
		start = r.next
	}
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Reset empties the window.
func (r *Rolling) Reset() {
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.next, r.count, r.run = 0, 0, 0
	r.mean, r.m2, r.last = 0, 0, 0
}
