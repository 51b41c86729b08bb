package sfx

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diegok/rundevrun-audio/internal/audio"
	"github.com/diegok/rundevrun-audio/internal/synth"
)

// floor for exponential decays, which cannot reach zero
const silence = 0.001

// Item is a collectible category. Higher tiers sound higher and longer.
type Item string

const (
	Keyboard Item = "keyboard"
	Mouse    Item = "mouse"
	Screen   Item = "screen"
	Laptop   Item = "laptop"
)

// Items lists the collectibles from lowest to highest value
var Items = []Item{Keyboard, Mouse, Screen, Laptop}

// ParseItem returns the item with the given name. Unknown names map to
// Keyboard.
func ParseItem(name string) Item {
	for _, it := range Items {
		if string(it) == name {
			return it
		}
	}
	return Keyboard
}

type collectTone struct {
	freq     float64
	duration float64
	wave     synth.Waveform
}

var collectTones = map[Item]collectTone{
	Keyboard: {freq: 440, duration: 0.15, wave: synth.Sine},        // A4
	Mouse:    {freq: 554.37, duration: 0.18, wave: synth.Sine},     // C#5
	Screen:   {freq: 659.25, duration: 0.20, wave: synth.Triangle}, // E5
	Laptop:   {freq: 880, duration: 0.25, wave: synth.Triangle},    // A5
}

// milestone chord, C major
var milestoneNotes = []float64{523.25, 659.25, 783.99}

// Effects synthesizes one-shot game sounds. Every trigger is fire and
// forget: it never blocks on the sound and never reports an error to the
// caller.
type Effects struct {
	log  zerolog.Logger
	sink audio.Sink

	mu     sync.Mutex
	warned bool
}

// New creates an effects synthesizer playing into sink
func New(log zerolog.Logger, sink audio.Sink) *Effects {
	return &Effects{
		log:  log.With().Str("component", "sfx").Logger(),
		sink: sink,
	}
}

// Jump plays a rising sweep
func (e *Effects) Jump() {
	e.fire("jump", func(now float64) []synth.Voice {
		return []synth.Voice{sweep(synth.Triangle, now, 0.15, 600, 1200, 0.4)}
	})
}

// DoubleJump plays the jump sweep reversed
func (e *Effects) DoubleJump() {
	e.fire("double-jump", func(now float64) []synth.Voice {
		return []synth.Voice{sweep(synth.Triangle, now, 0.15, 1200, 600, 0.4)}
	})
}

// Shoot plays a falling laser sweep
func (e *Effects) Shoot() {
	e.fire("shoot", func(now float64) []synth.Voice {
		return []synth.Voice{sweep(synth.Sawtooth, now, 0.18, 1200, 300, 0.5)}
	})
}

// Collect plays a chime whose pitch and length grow with the item's value
func (e *Effects) Collect(item Item) {
	e.fire("collect", func(now float64) []synth.Voice {
		tone, ok := collectTones[item]
		if !ok {
			tone = collectTones[Keyboard]
		}

		fundamental := ding(tone.wave, now, tone.duration, tone.freq, 0.6)
		harmonic := ding(tone.wave, now, tone.duration, tone.freq*2, 0.3)
		return []synth.Voice{fundamental, harmonic}
	})
}

// BugDestroy plays a two-layer falling burst
func (e *Effects) BugDestroy() {
	e.fire("bug-destroy", func(now float64) []synth.Voice {
		body := synth.Voice{Wave: synth.Square, Start: now, Stop: now + 0.2}
		body.Freq.SetValueAtTime(200, now)
		body.Freq.ExponentialRampToValueAtTime(50, now+0.2)
		body.Gain.SetValueAtTime(0.5, now)
		body.Gain.ExponentialRampToValueAtTime(silence, now+0.2)

		crack := synth.Voice{Wave: synth.Sawtooth, Start: now, Stop: now + 0.15}
		crack.Freq.SetValueAtTime(150, now)
		crack.Freq.ExponentialRampToValueAtTime(30, now+0.15)
		crack.Gain.SetValueAtTime(0.3, now)
		crack.Gain.ExponentialRampToValueAtTime(silence, now+0.15)

		return []synth.Voice{body, crack}
	})
}

// EnemySpawn plays a short low blip
func (e *Effects) EnemySpawn() {
	e.fire("enemy-spawn", func(now float64) []synth.Voice {
		return []synth.Voice{sweep(synth.Square, now, 0.1, 100, 150, 0.2)}
	})
}

// Milestone plays an arpeggiated major chord
func (e *Effects) Milestone() {
	e.fire("milestone", func(now float64) []synth.Voice {
		voices := make([]synth.Voice, 0, len(milestoneNotes))
		for i, freq := range milestoneNotes {
			start := now + float64(i)*0.05
			voices = append(voices, ding(synth.Sine, start, 0.4, freq, 0.4))
		}
		return voices
	})
}

// GameOver plays a single decaying square tone
func (e *Effects) GameOver() {
	e.fire("game-over", func(now float64) []synth.Voice {
		return []synth.Voice{ding(synth.Square, now, 0.2, 440, 0.5)}
	})
}

// SetVolume sets the effects volume, clamped to [0, 1]
func (e *Effects) SetVolume(level float64) {
	e.sink.SetVolume(audio.Clamp(level))
}

// Volume returns the effects volume
func (e *Effects) Volume() float64 {
	return e.sink.Volume()
}

// fire builds the voices for one effect starting now and schedules them.
// Failures are logged and swallowed.
func (e *Effects) fire(name string, build func(now float64) []synth.Voice) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("effect", name).Interface("panic", r).Msg("effect failed")
		}
	}()

	if err := e.sink.Activate(); err != nil {
		e.logActivateError(name, err)
		return
	}

	for _, v := range build(e.sink.CurrentTime()) {
		if err := e.sink.Schedule(v); err != nil {
			e.log.Warn().Str("effect", name).Err(err).Msg("effect voice dropped")
		}
	}
}

func (e *Effects) logActivateError(name string, err error) {
	e.mu.Lock()
	warned := e.warned
	e.warned = true
	e.mu.Unlock()

	if warned && errors.Cause(err) == audio.ErrUnavailable {
		return
	}
	e.log.Warn().Str("effect", name).Err(err).Msg("cannot play effect")
}

// sweep is a linear pitch glide with a linear fade out
func sweep(wave synth.Waveform, start, duration, from, to, gain float64) synth.Voice {
	v := synth.Voice{Wave: wave, Start: start, Stop: start + duration}
	v.Freq.SetValueAtTime(from, start)
	v.Freq.LinearRampToValueAtTime(to, start+duration)
	v.Gain.SetValueAtTime(gain, start)
	v.Gain.LinearRampToValueAtTime(0, start+duration)
	return v
}

// ding is a fixed pitch with an exponential decay
func ding(wave synth.Waveform, start, duration, freq, gain float64) synth.Voice {
	v := synth.Voice{Wave: wave, Start: start, Stop: start + duration, Freq: synth.Const(freq)}
	v.Gain.SetValueAtTime(gain, start)
	v.Gain.ExponentialRampToValueAtTime(silence, start+duration)
	return v
}
