package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)
	defaultBuffer     = time.Second / 30
)

// ErrUnavailable is returned once the sound device failed to open. The
// failure is latched: later calls never retry the device.
var ErrUnavailable = errors.New("audio output unavailable")

// State is the lifecycle state of an Output
type State int

const (
	StateIdle State = iota
	StateSuspended
	StateRunning
	StateUnavailable
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateUnavailable:
		return "unavailable"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Device is the physical sound output. Open must start pulling samples from
// s; Suspend and Resume gate the pulling.
type Device interface {
	Open(sr beep.SampleRate, bufferSize int, s beep.Streamer) error
	Suspend() error
	Resume() error
	Close()
}

// Output is the single entry point to the sound device. It owns the master
// gain stage and the audio clock, and feeds every Bus into the device.
//
// Construction does not touch the device. Open connects it in a suspended
// state and Activate resumes it; both are safe to call any number of times.
type Output struct {
	log    zerolog.Logger
	device Device
	sr     beep.SampleRate
	buffer time.Duration

	// ctl serializes device transitions. It is never taken from Stream, so
	// device calls may block on the device's own lock.
	ctl     sync.Mutex
	once    sync.Once
	openErr error

	mu      sync.Mutex
	state   State
	pos     int
	buses   []*Bus
	master  *effects.Gain
	scratch [][2]float64
}

// Option configures an Output
type Option func(*Output)

// WithDevice replaces the default speaker device
func WithDevice(d Device) Option {
	return func(o *Output) { o.device = d }
}

// WithSampleRate sets the rendering sample rate
func WithSampleRate(sr beep.SampleRate) Option {
	return func(o *Output) { o.sr = sr }
}

// WithBuffer sets the device buffer length
func WithBuffer(d time.Duration) Option {
	return func(o *Output) { o.buffer = d }
}

// NewOutput creates an output with the given master volume. The device is
// not opened until Open or Activate is called.
func NewOutput(log zerolog.Logger, masterVolume float64, opts ...Option) *Output {
	o := &Output{
		log:    log.With().Str("component", "output").Logger(),
		device: speakerDevice{},
		sr:     DefaultSampleRate,
		buffer: defaultBuffer,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.master = &effects.Gain{
		Streamer: beep.StreamerFunc(o.mix),
		Gain:     Clamp(masterVolume) - 1,
	}
	return o
}

// SampleRate returns the rendering sample rate
func (o *Output) SampleRate() beep.SampleRate {
	return o.sr
}

// Open connects the device. The device comes up suspended; Activate
// resumes it.
func (o *Output) Open() error {
	o.ctl.Lock()
	defer o.ctl.Unlock()
	return o.openLocked()
}

func (o *Output) openLocked() error {
	o.once.Do(func() {
		err := o.device.Open(o.sr, o.sr.N(o.buffer), o)
		if err == nil {
			if serr := o.device.Suspend(); serr != nil {
				o.log.Debug().Err(serr).Msg("device cannot suspend, starting live")
			}
		}

		o.mu.Lock()
		defer o.mu.Unlock()
		if err != nil {
			o.openErr = errors.Wrap(err, "open audio device")
			o.state = StateUnavailable
			o.log.Warn().Err(o.openErr).Msg("audio disabled")
			return
		}
		o.state = StateSuspended
		o.log.Info().Int("sample_rate", int(o.sr)).Dur("buffer", o.buffer).Msg("audio output opened")
	})

	if o.openErr != nil {
		return ErrUnavailable
	}
	return nil
}

// Activate opens the device if needed and resumes it. It is meant to run
// from a user gesture.
func (o *Output) Activate() error {
	o.ctl.Lock()
	defer o.ctl.Unlock()

	if err := o.openLocked(); err != nil {
		return err
	}

	switch o.State() {
	case StateRunning:
		return nil
	case StateClosed:
		return ErrUnavailable
	}

	if err := o.device.Resume(); err != nil {
		return errors.Wrap(err, "resume audio device")
	}

	o.mu.Lock()
	o.state = StateRunning
	o.mu.Unlock()
	o.log.Debug().Msg("audio output resumed")
	return nil
}

// Close releases the device. The output cannot be reopened.
func (o *Output) Close() {
	o.ctl.Lock()
	defer o.ctl.Unlock()

	o.mu.Lock()
	opened := o.state == StateSuspended || o.state == StateRunning
	if o.state != StateUnavailable {
		o.state = StateClosed
	}
	o.mu.Unlock()

	// a later Open must not reach the device
	o.once.Do(func() {})

	if opened {
		o.device.Close()
	}
}

// State returns the current lifecycle state
func (o *Output) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// CurrentTime returns the audio clock in seconds: the amount of audio
// rendered to the device so far.
func (o *Output) CurrentTime() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.now()
}

func (o *Output) now() float64 {
	return float64(o.pos) / float64(o.sr)
}

// SetVolume sets the master gain, clamped to [0, 1]
func (o *Output) SetVolume(level float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.master.Gain = Clamp(level) - 1
}

// Volume returns the master gain
func (o *Output) Volume() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.master.Gain + 1
}

// NewBus adds an independent gain stage feeding the master stage
func (o *Output) NewBus(name string, volume float64) *Bus {
	b := &Bus{
		out:    o,
		name:   name,
		volume: Clamp(volume),
	}
	o.mu.Lock()
	o.buses = append(o.buses, b)
	o.mu.Unlock()
	return b
}

// Stream renders the next block for the device and advances the clock.
func (o *Output) Stream(samples [][2]float64) (n int, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.master.Stream(samples)
	o.pos += len(samples)
	return len(samples), true
}

// Err implements beep.Streamer
func (o *Output) Err() error {
	return nil
}

// mix sums every bus into samples. Called with mu held.
func (o *Output) mix(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
	if cap(o.scratch) < len(samples) {
		o.scratch = make([][2]float64, len(samples))
	}
	buf := o.scratch[:len(samples)]
	for _, b := range o.buses {
		b.mixInto(samples, buf)
	}
	return len(samples), true
}

// Clamp limits a volume level to [0, 1]
func Clamp(level float64) float64 {
	if level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}
