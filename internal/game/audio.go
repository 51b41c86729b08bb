package game

import (
	"github.com/rs/zerolog"

	"github.com/diegok/rundevrun-audio/internal/music"
	"github.com/diegok/rundevrun-audio/internal/protocol"
	"github.com/diegok/rundevrun-audio/internal/sfx"
)

// Audio receives the game's audio events. Implementations never block the
// caller for long and never fail.
type Audio interface {
	Dispatch(ev protocol.Event)
}

// Nop is the audio used when sound is disabled
type Nop struct{}

// Dispatch discards the event
func (Nop) Dispatch(protocol.Event) {}

// Local plays events on this machine
type Local struct {
	log     zerolog.Logger
	music   *music.Scheduler
	effects *sfx.Effects
}

// NewLocal creates an audio that drives the given music scheduler and
// effects synthesizer.
func NewLocal(log zerolog.Logger, m *music.Scheduler, fx *sfx.Effects) *Local {
	return &Local{
		log:     log.With().Str("component", "game-audio").Logger(),
		music:   m,
		effects: fx,
	}
}

// Dispatch plays the event
func (l *Local) Dispatch(ev protocol.Event) {
	switch ev.Kind {
	case protocol.EvPlayMusic:
		l.music.Play(ev.Pattern)
	case protocol.EvStopMusic:
		l.music.Stop()
	case protocol.EvSwitchPattern:
		l.music.SwitchPattern(ev.Pattern)
	case protocol.EvMusicVolume:
		l.music.SetVolume(ev.Volume)
	case protocol.EvJump:
		l.effects.Jump()
	case protocol.EvDoubleJump:
		l.effects.DoubleJump()
	case protocol.EvShoot:
		l.effects.Shoot()
	case protocol.EvCollect:
		l.effects.Collect(sfx.ParseItem(ev.Item))
	case protocol.EvBugDestroy:
		l.effects.BugDestroy()
	case protocol.EvEnemySpawn:
		l.effects.EnemySpawn()
	case protocol.EvMilestone:
		l.effects.Milestone()
	case protocol.EvGameOver:
		l.effects.GameOver()
	case protocol.EvEffectsVolume:
		l.effects.SetVolume(ev.Volume)
	default:
		l.log.Debug().Int("kind", int(ev.Kind)).Msg("ignoring unknown event")
	}
}

// Patterns lists the music patterns this audio can play
func (l *Local) Patterns() []string {
	return l.music.Patterns()
}
