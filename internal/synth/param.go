package synth

import (
	"math"
	"sort"
)

type rampKind int

const (
	rampSet rampKind = iota
	rampLinear
	rampExponential
)

type automation struct {
	kind  rampKind
	value float64
	time  float64
}

// Param is a value that changes over audio-clock time. Changes are queued as
// automation events, the same way a Web Audio AudioParam is driven.
type Param struct {
	Value  float64
	events []automation
}

// Const returns a param holding v for its whole lifetime
func Const(v float64) Param {
	return Param{Value: v}
}

// SetValueAtTime jumps to v at time t.
func (p *Param) SetValueAtTime(v, t float64) *Param {
	return p.add(automation{kind: rampSet, value: v, time: t})
}

// LinearRampToValueAtTime moves linearly from the previous event's value,
// reaching v at time t.
func (p *Param) LinearRampToValueAtTime(v, t float64) *Param {
	return p.add(automation{kind: rampLinear, value: v, time: t})
}

// ExponentialRampToValueAtTime moves exponentially from the previous event's
// value, reaching v at time t. Both ends must be non-zero and of the same
// sign; otherwise the ramp degrades to a jump at t.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) *Param {
	return p.add(automation{kind: rampExponential, value: v, time: t})
}

func (p *Param) add(a automation) *Param {
	p.events = append(p.events, a)
	sort.SliceStable(p.events, func(i, j int) bool {
		return p.events[i].time < p.events[j].time
	})
	return p
}

// At evaluates the param at audio-clock time t
func (p *Param) At(t float64) float64 {
	prevValue := p.Value
	prevTime := math.Inf(-1)

	for _, ev := range p.events {
		if t < ev.time {
			switch ev.kind {
			case rampLinear:
				if math.IsInf(prevTime, -1) {
					return prevValue
				}
				frac := (t - prevTime) / (ev.time - prevTime)
				return prevValue + (ev.value-prevValue)*frac
			case rampExponential:
				if math.IsInf(prevTime, -1) || prevValue == 0 || prevValue*ev.value <= 0 {
					return prevValue
				}
				frac := (t - prevTime) / (ev.time - prevTime)
				return prevValue * math.Pow(ev.value/prevValue, frac)
			default:
				return prevValue
			}
		}
		prevValue = ev.value
		prevTime = ev.time
	}

	return prevValue
}

// End returns the value the param settles on after its last event
func (p *Param) End() float64 {
	if len(p.events) == 0 {
		return p.Value
	}
	return p.events[len(p.events)-1].value
}
