package synth

import (
	"math"

	"github.com/pkg/errors"
)

// Waveform is the timbre of an oscillator
type Waveform int

const (
	Sine Waveform = iota
	Square
	Triangle
	Sawtooth
)

var waveNames = map[Waveform]string{
	Sine:     "sine",
	Square:   "square",
	Triangle: "triangle",
	Sawtooth: "sawtooth",
}

func (w Waveform) String() string {
	if name, ok := waveNames[w]; ok {
		return name
	}
	return "unknown"
}

// ParseWaveform converts a waveform name ("sine", "square", ...) to a Waveform
func ParseWaveform(name string) (Waveform, error) {
	for w, n := range waveNames {
		if n == name {
			return w, nil
		}
	}
	return Sine, errors.Errorf("unknown waveform %q", name)
}

// sample returns the waveform value at the given phase, where phase is the
// position inside one cycle in [0, 1)
func (w Waveform) sample(phase float64) float64 {
	switch w {
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Triangle:
		return 1 - 4*math.Abs(phase-0.5)
	case Sawtooth:
		return 2*phase - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
