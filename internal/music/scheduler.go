package music

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diegok/rundevrun-audio/internal/audio"
	"github.com/diegok/rundevrun-audio/internal/synth"
)

const (
	// Lookahead is how often the scheduler wakes up
	Lookahead = 25 * time.Millisecond
	// ScheduleAhead is how far past the audio clock notes get queued, in seconds
	ScheduleAhead = 0.1
	// SwitchDelay lets queued notes drain before the next pattern starts
	SwitchDelay = 100 * time.Millisecond

	attackTime   = 0.01
	sustainPoint = 0.3 // fraction of the note where the sustain level is reached
	sustainLevel = 2.0 / 3
	melodyPeak   = 0.3
	bassPeak     = 0.2
	bassLength   = 1.5
	bassWave     = synth.Triangle
)

// Scheduler keeps a pattern looping by queueing its notes a short window
// ahead of the audio clock. Timer callbacks can arrive late; as long as they
// arrive within the window the music stays gapless.
type Scheduler struct {
	log      zerolog.Logger
	sink     audio.Sink
	clock    clockwork.Clock
	patterns Patterns

	mu           sync.Mutex
	pattern      *Pattern
	playing      bool
	cursor       int
	nextNoteTime float64
	volume       float64
	run          *run
	warned       bool
}

// run is the scheduler's single timer slot: either the recurring tick of a
// playing pattern or a pending pattern switch. Arming a new run always
// stops the previous one first, and callbacks of a stopped run are ignored.
type run struct {
	ticker clockwork.Ticker
	timer  clockwork.Timer
	done   chan struct{}
}

func (r *run) stop() {
	if r.ticker != nil {
		r.ticker.Stop()
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	close(r.done)
}

// NewScheduler creates a stopped scheduler playing into sink
func NewScheduler(log zerolog.Logger, sink audio.Sink, patterns Patterns, clock clockwork.Clock) *Scheduler {
	return &Scheduler{
		log:      log.With().Str("component", "music").Logger(),
		sink:     sink,
		clock:    clock,
		patterns: patterns,
		volume:   sink.Volume(),
	}
}

// Play starts looping the named pattern from its first note. Any pattern
// already playing is stopped. If the output cannot be brought up, Play
// logs and leaves the music stopped.
func (s *Scheduler) Play(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playLocked(name)
}

func (s *Scheduler) playLocked(name string) {
	p, ok := s.patterns[name]
	if !ok {
		s.log.Warn().Str("pattern", name).Msg("unknown pattern")
		return
	}

	if err := s.sink.Activate(); err != nil {
		s.logActivateError(err)
		return
	}

	s.disarm()
	s.pattern = p
	s.playing = true
	s.cursor = 0
	s.nextNoteTime = s.sink.CurrentTime()

	r := &run{
		ticker: s.clock.NewTicker(Lookahead),
		done:   make(chan struct{}),
	}
	s.run = r
	go s.loop(r)

	s.log.Debug().Str("pattern", name).Float64("tempo", p.Tempo).Msg("music started")
}

// Stop halts scheduling. Notes already queued finish on their own. The
// last pattern is remembered.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.disarm()
}

// SwitchPattern stops the current pattern and starts name after
// SwitchDelay. A later Play, Stop or SwitchPattern cancels a pending switch.
func (s *Scheduler) SwitchPattern(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playing = false
	s.disarm()

	r := &run{done: make(chan struct{})}
	r.timer = s.clock.AfterFunc(SwitchDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.run != r {
			return
		}
		s.run = nil
		s.playLocked(name)
	})
	s.run = r
}

// SetVolume sets the music volume, clamped to [0, 1]
func (s *Scheduler) SetVolume(level float64) {
	level = audio.Clamp(level)
	s.mu.Lock()
	s.volume = level
	s.mu.Unlock()
	s.sink.SetVolume(level)
}

// Volume returns the music volume
func (s *Scheduler) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// IsPlaying reports whether a pattern is looping
func (s *Scheduler) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Pattern returns the name of the active pattern, or "" if none was played
func (s *Scheduler) Pattern() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pattern == nil {
		return ""
	}
	return s.pattern.Name
}

// Patterns returns the names of the patterns the scheduler can play
func (s *Scheduler) Patterns() []string {
	return s.patterns.Names()
}

func (s *Scheduler) disarm() {
	if s.run != nil {
		s.run.stop()
		s.run = nil
	}
}

func (s *Scheduler) loop(r *run) {
	for {
		select {
		case <-r.done:
			return
		case <-r.ticker.Chan():
			s.mu.Lock()
			if s.run == r {
				s.tick()
			}
			s.mu.Unlock()
		}
	}
}

// tick queues every note due before the end of the lookahead window.
// Called with mu held.
func (s *Scheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("music tick failed")
		}
	}()

	if !s.playing || s.pattern == nil {
		return
	}
	p := s.pattern
	now := s.sink.CurrentTime()

	// after a stall, pick up from now instead of flushing a burst of late notes
	if now-s.nextNoteTime > ScheduleAhead {
		s.log.Debug().Float64("behind", now-s.nextNoteTime).Msg("music scheduler fell behind")
		s.nextNoteTime = now
	}

	for s.nextNoteTime < now+ScheduleAhead {
		i := s.cursor % len(p.Notes)
		start := s.nextNoteTime

		s.scheduleNote(synth.Frequency(p.Notes[i]), start, p.NoteDuration, p.Wave, melodyPeak)
		s.scheduleNote(synth.Frequency(p.Bass[i]), start, p.NoteDuration*bassLength, bassWave, bassPeak)

		s.cursor++
		s.nextNoteTime += p.SecondsPerBeat()
	}
}

func (s *Scheduler) scheduleNote(freq, start, duration float64, wave synth.Waveform, peak float64) {
	v := synth.Voice{
		Wave:  wave,
		Start: start,
		Stop:  start + duration,
		Freq:  synth.Const(freq),
	}
	v.Gain.SetValueAtTime(0, start)
	v.Gain.LinearRampToValueAtTime(peak, start+attackTime)
	v.Gain.LinearRampToValueAtTime(peak*sustainLevel, start+duration*sustainPoint)
	v.Gain.LinearRampToValueAtTime(0, start+duration)

	if err := s.sink.Schedule(v); err != nil {
		s.log.Debug().Err(err).Float64("freq", freq).Msg("note dropped")
	}
}

// logActivateError warns the first time audio cannot start and stays quiet
// afterwards.
func (s *Scheduler) logActivateError(err error) {
	if s.warned && errors.Cause(err) == audio.ErrUnavailable {
		s.log.Debug().Err(err).Msg("music unavailable")
		return
	}
	s.warned = true
	s.log.Warn().Err(err).Msg("cannot start music")
}
