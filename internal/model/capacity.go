package model

import "fmt"

// Capacity tracks occupancy of a single event slot.
type Capacity struct {
	max     int
	current int
}

func NewCapacity(max, current int) (Capacity, error) {
	if max < 0 || current < 0 {
		return Capacity{}, fmt.Errorf("%w (max=%d current=%d)", ErrNegativeCapacity, max, current)
	}
	if current > max {
		return Capacity{}, fmt.Errorf("%w (max=%d current=%d)", ErrCapacityExceeded, max, current)
	}
	return Capacity{max: max, current: current}, nil
}

func (c Capacity) Max() int       { return c.max }
func (c Capacity) Current() int   { return c.current }
func (c Capacity) Available() int { return c.max - c.current }
func (c Capacity) IsFull() bool   { return c.current >= c.max }

// UtilizationRate is a percentage in [0, 100]; zero when max is zero.
func (c Capacity) UtilizationRate() float64 {
	if c.max == 0 {
		return 0
	}
	return float64(c.current) / float64(c.max) * 100
}

func (c Capacity) CanAccommodate(n int) bool {
	return c.current+n <= c.max
}

// Admit returns a new Capacity with n more attendees.
func (c Capacity) Admit(n int) (Capacity, error) {
	return NewCapacity(c.max, c.current+n)
}
