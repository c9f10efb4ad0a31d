package emission

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"

	sdkmath "cosmossdk.io/math"
)

// Breakpoint starts a segment of constant emission. Offset is measured in
// seconds since the schedule start and Rate in reward base units per second.
type Breakpoint struct {
	Offset uint64
	Rate   sdkmath.Int
}

// Schedule is a piecewise-constant emission curve. The rate of the last
// breakpoint holds forever.
type Schedule struct {
	breakpoints []Breakpoint
}

// NewSchedule validates breakpoints and builds a schedule from them. The first
// breakpoint must start at offset 0 and offsets must be strictly increasing.
func NewSchedule(breakpoints []Breakpoint) (*Schedule, error) {
	if len(breakpoints) == 0 {
		return nil, errors.New("emission schedule needs at least one breakpoint")
	}
	if breakpoints[0].Offset != 0 {
		return nil, fmt.Errorf("first breakpoint must start at offset 0, got %d", breakpoints[0].Offset)
	}

	bps := make([]Breakpoint, 0, len(breakpoints))
	for i, bp := range breakpoints {
		if bp.Rate.IsNil() || bp.Rate.IsNegative() {
			return nil, fmt.Errorf("breakpoint %d has an invalid rate", i)
		}
		if i > 0 && bp.Offset <= breakpoints[i-1].Offset {
			return nil, fmt.Errorf("breakpoint %d offset %d is not after %d", i, bp.Offset, breakpoints[i-1].Offset)
		}
		// adjacent segments with equal rates are merged
		if len(bps) > 0 && bps[len(bps)-1].Rate.Equal(bp.Rate) {
			continue
		}
		bps = append(bps, Breakpoint{Offset: bp.Offset, Rate: bp.Rate})
	}

	return &Schedule{breakpoints: bps}, nil
}

// NewStepSchedule builds the decaying shape: steps segments of stepDuration
// seconds starting at initial and decreasing by decrement per step, never
// going under floor, then floor forever.
func NewStepSchedule(initial, decrement, floor sdkmath.Int, steps, stepDuration uint64) (*Schedule, error) {
	if initial.IsNil() || decrement.IsNil() || floor.IsNil() {
		return nil, errors.New("emission rates must be set")
	}
	if initial.IsNegative() || decrement.IsNegative() || floor.IsNegative() {
		return nil, errors.New("emission rates must not be negative")
	}
	if initial.LT(floor) {
		return nil, fmt.Errorf("initial rate %s is below floor %s", initial, floor)
	}
	if steps > 0 && stepDuration == 0 {
		return nil, errors.New("step duration must be positive")
	}
	if hi, _ := bits.Mul64(steps, stepDuration); hi != 0 {
		return nil, errors.New("schedule length overflows")
	}

	bps := make([]Breakpoint, 0, steps+1)
	for i := uint64(0); i < steps; i++ {
		rate := initial.Sub(decrement.Mul(sdkmath.NewIntFromUint64(i)))
		if rate.LT(floor) {
			rate = floor
		}
		bps = append(bps, Breakpoint{Offset: i * stepDuration, Rate: rate})
	}
	bps = append(bps, Breakpoint{Offset: steps * stepDuration, Rate: floor})

	return NewSchedule(bps)
}

// NewConstantSchedule emits rate per second forever.
func NewConstantSchedule(rate sdkmath.Int) (*Schedule, error) {
	return NewSchedule([]Breakpoint{{Offset: 0, Rate: rate}})
}

// Breakpoints returns a copy of the normalized breakpoints.
func (s *Schedule) Breakpoints() []Breakpoint {
	out := make([]Breakpoint, len(s.breakpoints))
	copy(out, s.breakpoints)
	return out
}

// segment returns the index of the breakpoint governing offset t.
func (s *Schedule) segment(t uint64) int {
	i := sort.Search(len(s.breakpoints), func(i int) bool {
		return s.breakpoints[i].Offset > t
	})
	return i - 1
}

// Rate returns the instantaneous emission rate at t seconds after start.
func (s *Schedule) Rate(t uint64) sdkmath.Int {
	return s.breakpoints[s.segment(t)].Rate
}

// Integrate returns the exact amount emitted over [from, to). Every segment
// boundary crossed inside the interval contributes at its own rate.
func (s *Schedule) Integrate(from, to uint64) sdkmath.Int {
	total := sdkmath.ZeroInt()
	if to <= from {
		return total
	}

	for i := s.segment(from); i < len(s.breakpoints); i++ {
		start := s.breakpoints[i].Offset
		if start >= to {
			break
		}
		end := to
		if i+1 < len(s.breakpoints) && s.breakpoints[i+1].Offset < to {
			end = s.breakpoints[i+1].Offset
		}
		if start < from {
			start = from
		}
		if end <= start {
			continue
		}
		total = total.Add(s.breakpoints[i].Rate.Mul(sdkmath.NewIntFromUint64(end - start)))
	}

	return total
}
