package audio

import (
	"math"

	"github.com/gopxl/beep/v2"
	"github.com/pkg/errors"

	"github.com/diegok/rundevrun-audio/internal/synth"
)

// Sink is where players schedule their voices. *Bus implements it.
type Sink interface {
	// Activate makes sure the output is open and resumed
	Activate() error
	// CurrentTime is the audio clock, in seconds
	CurrentTime() float64
	// Schedule queues a voice at its absolute start time
	Schedule(v synth.Voice) error
	SetVolume(level float64)
	Volume() float64
}

// Bus is a gain stage with its own set of scheduled voices. Music and sound
// effects each get one, so their volumes stay independent.
type Bus struct {
	out    *Output
	name   string
	volume float64
	voices beep.Mixer
}

// Name returns the bus name
func (b *Bus) Name() string {
	return b.name
}

// Activate opens and resumes the shared output
func (b *Bus) Activate() error {
	return b.out.Activate()
}

// CurrentTime returns the shared audio clock
func (b *Bus) CurrentTime() float64 {
	return b.out.CurrentTime()
}

// Schedule queues v to start at v.Start on the audio clock. A voice whose
// start time has already passed starts right away.
func (b *Bus) Schedule(v synth.Voice) error {
	if !(v.Stop > v.Start) {
		return errors.Errorf("voice on %s ends before it starts (%.3f..%.3f)", b.name, v.Start, v.Stop)
	}

	o := b.out
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateRunning && o.state != StateSuspended {
		return ErrUnavailable
	}

	var s beep.Streamer = v.Streamer(o.sr)
	offset := int(math.Round((v.Start - o.now()) * float64(o.sr)))
	if offset > 0 {
		s = beep.Seq(beep.Silence(offset), s)
	}
	b.voices.Add(s)
	return nil
}

// Pending returns the number of voices queued or sounding on the bus
func (b *Bus) Pending() int {
	b.out.mu.Lock()
	defer b.out.mu.Unlock()
	return b.voices.Len()
}

// SetVolume sets the bus gain, clamped to [0, 1]
func (b *Bus) SetVolume(level float64) {
	b.out.mu.Lock()
	defer b.out.mu.Unlock()
	b.volume = Clamp(level)
}

// Volume returns the bus gain
func (b *Bus) Volume() float64 {
	b.out.mu.Lock()
	defer b.out.mu.Unlock()
	return b.volume
}

// mixInto adds the bus output to dst, using buf as scratch space. Called
// with the output lock held.
func (b *Bus) mixInto(dst, buf [][2]float64) {
	if b.voices.Len() == 0 {
		return
	}
	n, _ := b.voices.Stream(buf)
	for i := 0; i < n; i++ {
		dst[i][0] += buf[i][0] * b.volume
		dst[i][1] += buf[i][1] * b.volume
	}
}
