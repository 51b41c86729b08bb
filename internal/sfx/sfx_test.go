package sfx

import (
	"math"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diegok/rundevrun-audio/internal/audio"
	"github.com/diegok/rundevrun-audio/internal/synth"
)

type fakeSink struct {
	mu          sync.Mutex
	now         float64
	volume      float64
	voices      []synth.Voice
	activateErr error
}

func (f *fakeSink) Activate() error { return f.activateErr }

func (f *fakeSink) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeSink) Schedule(v synth.Voice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voices = append(f.voices, v)
	return nil
}

func (f *fakeSink) SetVolume(v float64) { f.volume = v }
func (f *fakeSink) Volume() float64     { return f.volume }

func (f *fakeSink) take() []synth.Voice {
	f.mu.Lock()
	defer f.mu.Unlock()
	vs := f.voices
	f.voices = nil
	return vs
}

func newTestEffects() (*Effects, *fakeSink) {
	sink := &fakeSink{now: 2, volume: 0.5}
	return New(zerolog.Nop(), sink), sink
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		name string
		want Item
	}{
		{"keyboard", Keyboard},
		{"mouse", Mouse},
		{"screen", Screen},
		{"laptop", Laptop},
		{"coffee", Keyboard},
		{"", Keyboard},
	}

	for _, tt := range tests {
		if got := ParseItem(tt.name); got != tt.want {
			t.Errorf("ParseItem(%q): expected %s, got %s", tt.name, tt.want, got)
		}
	}
}

func TestJump_RisingSweep(t *testing.T) {
	e, sink := newTestEffects()
	e.Jump()

	vs := sink.take()
	if len(vs) != 1 {
		t.Fatalf("expected 1 voice, got %d", len(vs))
	}
	v := vs[0]
	if v.Wave != synth.Triangle {
		t.Errorf("expected triangle, got %s", v.Wave)
	}
	if !approx(v.Start, 2) || !approx(v.Stop, 2.15) {
		t.Errorf("expected [2, 2.15], got [%v, %v]", v.Start, v.Stop)
	}
	if !approx(v.Freq.At(2), 600) || !approx(v.Freq.At(2.15), 1200) {
		t.Errorf("expected 600 -> 1200 Hz, got %v -> %v", v.Freq.At(2), v.Freq.At(2.15))
	}
	if !approx(v.Gain.At(2), 0.4) || !approx(v.Gain.At(2.15), 0) {
		t.Errorf("expected gain 0.4 -> 0, got %v -> %v", v.Gain.At(2), v.Gain.At(2.15))
	}
}

func TestDoubleJump_MirrorsJump(t *testing.T) {
	e, sink := newTestEffects()
	e.Jump()
	e.DoubleJump()

	vs := sink.take()
	if len(vs) != 2 {
		t.Fatalf("expected 2 voices, got %d", len(vs))
	}
	jump, double := vs[0], vs[1]
	if !approx(jump.Freq.At(jump.Start), double.Freq.At(double.Stop)) ||
		!approx(jump.Freq.At(jump.Stop), double.Freq.At(double.Start)) {
		t.Errorf("expected double jump to reverse the jump sweep")
	}
	if double.Duration() != jump.Duration() {
		t.Errorf("expected equal durations, got %v and %v", jump.Duration(), double.Duration())
	}
}

func TestShoot(t *testing.T) {
	e, sink := newTestEffects()
	e.Shoot()

	vs := sink.take()
	if len(vs) != 1 {
		t.Fatalf("expected 1 voice, got %d", len(vs))
	}
	v := vs[0]
	if v.Wave != synth.Sawtooth {
		t.Errorf("expected sawtooth, got %s", v.Wave)
	}
	if v.Freq.At(v.Stop) >= v.Freq.At(v.Start) {
		t.Errorf("expected falling pitch, got %v -> %v", v.Freq.At(v.Start), v.Freq.At(v.Stop))
	}
}

func TestCollect_ValueRaisesPitchAndLength(t *testing.T) {
	e, sink := newTestEffects()

	var prev synth.Voice
	for i, item := range Items {
		e.Collect(item)
		vs := sink.take()
		if len(vs) != 2 {
			t.Fatalf("%s: expected 2 voices, got %d", item, len(vs))
		}
		fundamental, harmonic := vs[0], vs[1]
		if !approx(harmonic.Freq.Value, 2*fundamental.Freq.Value) {
			t.Errorf("%s: expected harmonic at %v, got %v", item, 2*fundamental.Freq.Value, harmonic.Freq.Value)
		}
		if !approx(fundamental.Gain.At(fundamental.Start), 0.6) || !approx(harmonic.Gain.At(harmonic.Start), 0.3) {
			t.Errorf("%s: expected gains 0.6 and 0.3", item)
		}

		if i > 0 {
			if fundamental.Freq.Value <= prev.Freq.Value {
				t.Errorf("%s: expected higher pitch than previous item, got %v <= %v", item, fundamental.Freq.Value, prev.Freq.Value)
			}
			if fundamental.Duration() <= prev.Duration() {
				t.Errorf("%s: expected longer chime than previous item", item)
			}
		}
		prev = fundamental
	}
}

func TestCollect_UnknownItemSoundsLikeKeyboard(t *testing.T) {
	e, sink := newTestEffects()
	e.Collect(Keyboard)
	keyboard := sink.take()
	e.Collect(Item("coffee"))
	unknown := sink.take()

	if len(unknown) != len(keyboard) {
		t.Fatalf("expected %d voices, got %d", len(keyboard), len(unknown))
	}
	if unknown[0].Freq.Value != keyboard[0].Freq.Value || unknown[0].Duration() != keyboard[0].Duration() {
		t.Errorf("expected unknown item to fall back to keyboard")
	}
}

func TestBugDestroy_TwoLayers(t *testing.T) {
	e, sink := newTestEffects()
	e.BugDestroy()

	vs := sink.take()
	if len(vs) != 2 {
		t.Fatalf("expected 2 voices, got %d", len(vs))
	}
	if vs[0].Wave != synth.Square || vs[1].Wave != synth.Sawtooth {
		t.Errorf("expected square and sawtooth layers, got %s and %s", vs[0].Wave, vs[1].Wave)
	}
	if !approx(vs[0].Freq.At(vs[0].Stop), 50) {
		t.Errorf("expected body to fall to 50 Hz, got %v", vs[0].Freq.At(vs[0].Stop))
	}
	if !approx(vs[1].Freq.At(vs[1].Stop), 30) {
		t.Errorf("expected crack to fall to 30 Hz, got %v", vs[1].Freq.At(vs[1].Stop))
	}
}

func TestEnemySpawn(t *testing.T) {
	e, sink := newTestEffects()
	e.EnemySpawn()

	vs := sink.take()
	if len(vs) != 1 {
		t.Fatalf("expected 1 voice, got %d", len(vs))
	}
	if !approx(vs[0].Duration(), 0.1) {
		t.Errorf("expected 0.1s blip, got %v", vs[0].Duration())
	}
	if !approx(vs[0].Freq.At(vs[0].Stop), 150) {
		t.Errorf("expected rise to 150 Hz, got %v", vs[0].Freq.At(vs[0].Stop))
	}
}

func TestMilestone_StaggeredChord(t *testing.T) {
	e, sink := newTestEffects()
	e.Milestone()

	vs := sink.take()
	if len(vs) != 3 {
		t.Fatalf("expected 3 voices, got %d", len(vs))
	}
	for i, v := range vs {
		want := 2 + float64(i)*0.05
		if !approx(v.Start, want) {
			t.Errorf("note %d: expected start %v, got %v", i, want, v.Start)
		}
		if !approx(v.Duration(), 0.4) {
			t.Errorf("note %d: expected 0.4s, got %v", i, v.Duration())
		}
		if i > 0 && v.Freq.Value <= vs[i-1].Freq.Value {
			t.Errorf("note %d: expected ascending chord", i)
		}
	}
}

func TestGameOver(t *testing.T) {
	e, sink := newTestEffects()
	e.GameOver()

	vs := sink.take()
	if len(vs) != 1 {
		t.Fatalf("expected 1 voice, got %d", len(vs))
	}
	v := vs[0]
	if v.Wave != synth.Square || v.Freq.Value != 440 {
		t.Errorf("expected 440 Hz square, got %v Hz %s", v.Freq.Value, v.Wave)
	}
	if got := v.Gain.At(v.Stop); !approx(got, silence) {
		t.Errorf("expected decay to %v, got %v", silence, got)
	}
}

func TestEffects_SilentWhenUnavailable(t *testing.T) {
	e, sink := newTestEffects()
	sink.activateErr = errors.Wrap(audio.ErrUnavailable, "open")

	e.Jump()
	e.Collect(Laptop)
	e.Milestone()

	if vs := sink.take(); len(vs) != 0 {
		t.Errorf("expected no voices, got %d", len(vs))
	}
}

func TestEffects_SetVolumeClamps(t *testing.T) {
	e, _ := newTestEffects()

	tests := []struct {
		level float64
		want  float64
	}{
		{0.7, 0.7},
		{-1, 0},
		{3, 1},
	}

	for _, tt := range tests {
		e.SetVolume(tt.level)
		if got := e.Volume(); got != tt.want {
			t.Errorf("SetVolume(%v): expected %v, got %v", tt.level, tt.want, got)
		}
	}
}
