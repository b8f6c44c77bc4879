package primitives

import "sort"

// SlidingMedian maintains a running median over a bounded window, used by
// directional median filtering. Samples are kept in a sorted slice; window
// sizes used in practice (tens of samples) keep the O(k) shift on
// insert/erase cheap, while sort.Search keeps the position lookup O(log k).
type SlidingMedian struct {
	sorted []float64
}

// NewSlidingMedian returns an empty sliding median accumulator.
func NewSlidingMedian() *SlidingMedian {
	return &SlidingMedian{}
}

// Insert adds v to the window.
func (m *SlidingMedian) Insert(v float64) {
	i := sort.SearchFloat64s(m.sorted, v)
	m.sorted = append(m.sorted, 0)
	copy(m.sorted[i+1:], m.sorted[i:])
	m.sorted[i] = v
}

// Erase removes one occurrence of v from the window. No-op if v is absent.
func (m *SlidingMedian) Erase(v float64) {
	i := sort.SearchFloat64s(m.sorted, v)
	if i >= len(m.sorted) || m.sorted[i] != v {
		return
	}
	m.sorted = append(m.sorted[:i], m.sorted[i+1:]...)
}

// Median returns the current median, or 0 if the window is empty.
func (m *SlidingMedian) Median() float64 {
	n := len(m.sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return m.sorted[n/2]
	}
	return (m.sorted[n/2-1] + m.sorted[n/2]) / 2
}

// Len returns the number of samples currently in the window.
func (m *SlidingMedian) Len() int { return len(m.sorted) }

// RunningMedianFilter applies a centered sliding-window median of the
// given odd width to signal, using edge replication at the boundaries.
func RunningMedianFilter(signal []float64, width int) []float64 {
	if width < 1 {
		width = 1
	}
	if width%2 == 0 {
		width++
	}
	half := width / 2
	n := len(signal)
	out := make([]float64, n)

	at := func(i int) float64 {
		if i < 0 {
			return signal[0]
		}
		if i >= n {
			return signal[n-1]
		}
		return signal[i]
	}

	sm := NewSlidingMedian()
	for i := -half; i <= half; i++ {
		sm.Insert(at(i))
	}
	out[0] = sm.Median()
	for i := 1; i < n; i++ {
		sm.Erase(at(i - half - 1))
		sm.Insert(at(i + half))
		out[i] = sm.Median()
	}
	return out
}
