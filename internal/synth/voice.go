package synth

import (
	"math"

	"github.com/gopxl/beep/v2"
)

// Voice is one oscillator and its gain envelope, bounded to [Start, Stop)
// on the audio clock. Times are in seconds.
type Voice struct {
	Wave  Waveform
	Start float64
	Stop  float64
	Freq  Param
	Gain  Param
}

// Duration returns how long the voice sounds
func (v Voice) Duration() float64 {
	return v.Stop - v.Start
}

// Streamer renders the voice at the given sample rate. The first sample is
// the voice's start time; the streamer is drained once Stop is reached.
func (v Voice) Streamer(sr beep.SampleRate) beep.Streamer {
	total := int(math.Round(v.Duration() * float64(sr)))
	rate := float64(sr)
	pos := 0
	phase := 0.0

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			if pos >= total {
				return i, i > 0
			}
			t := v.Start + float64(pos)/rate
			val := v.Wave.sample(phase) * v.Gain.At(t)
			samples[i][0] = val
			samples[i][1] = val

			phase += v.Freq.At(t) / rate
			phase -= math.Floor(phase)
			pos++
		}
		return len(samples), true
	})
}
