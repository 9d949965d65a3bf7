package rules

import (
	"errors"
	"math/rand/v2"

	"github.com/matchday-bet/matchday/internal/config"
)

// Wheel draws lucky spin amounts from a weighted table.
type Wheel struct {
	slices []config.SpinSlice
	total  int
	rnd    func() float64
}

// NewWheel validates the table and returns a wheel drawing from math/rand/v2.
func NewWheel(table []config.SpinSlice) (*Wheel, error) {
	return NewWheelWithSource(table, rand.Float64)
}

// NewWheelWithSource returns a wheel using rnd as its uniform [0,1) source.
func NewWheelWithSource(table []config.SpinSlice, rnd func() float64) (*Wheel, error) {
	if len(table) == 0 {
		return nil, errors.New("rules: empty spin table")
	}
	if rnd == nil {
		rnd = rand.Float64
	}
	total := 0
	slices := make([]config.SpinSlice, 0, len(table))
	for _, slice := range table {
		if slice.Weight < 0 {
			return nil, errors.New("rules: negative spin weight")
		}
		total += slice.Weight
		slices = append(slices, slice)
	}
	if total <= 0 {
		return nil, errors.New("rules: spin table total weight must be positive")
	}
	return &Wheel{slices: slices, total: total, rnd: rnd}, nil
}

// Spin draws one amount: r is scaled to the total weight and weights are
// subtracted in table order until r drops to zero or below.
func (w *Wheel) Spin() int64 {
	r := w.rnd() * float64(w.total)
	for _, slice := range w.slices {
		r -= float64(slice.Weight)
		if r <= 0 {
			return slice.Amount
		}
	}
	return w.slices[0].Amount
}

// Slices returns a copy of the wheel table.
func (w *Wheel) Slices() []config.SpinSlice {
	out := make([]config.SpinSlice, len(w.slices))
	copy(out, w.slices)
	return out
}
