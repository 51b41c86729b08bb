package game

import (
	"github.com/diegok/rundevrun-audio/internal/audio"
	"github.com/diegok/rundevrun-audio/internal/music"
	"github.com/diegok/rundevrun-audio/internal/protocol"
	"github.com/diegok/rundevrun-audio/internal/sfx"
)

// Scoring constants
const (
	MilestoneEvery = 100 // a milestone sounds each time the score passes a multiple of this
	BugPoints      = 5
	VolumeStep     = 0.1
)

// ItemPoints is the score awarded per collectible
var ItemPoints = map[sfx.Item]int{
	sfx.Keyboard: 10,
	sfx.Mouse:    15,
	sfx.Screen:   20,
	sfx.Laptop:   30,
}

// Phase is the stage of a run
type Phase int

const (
	PhaseMenu Phase = iota
	PhaseRunning
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "menu"
	case PhaseRunning:
		return "running"
	case PhaseOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only view of a session
type Snapshot struct {
	Phase         Phase
	Score         int
	Milestones    int
	Airborne      bool
	DoubleJumped  bool
	MusicVolume   float64
	EffectsVolume float64
	LastEvent     string
}

// Session tracks the little game state that decides which sound plays.
// It is not safe for concurrent use; the game loop owns it.
type Session struct {
	audio Audio

	phase         Phase
	score         int
	milestones    int
	airborne      bool
	doubleJumped  bool
	musicVolume   float64
	effectsVolume float64
	lastEvent     string
}

// NewSession creates a session in the menu phase
func NewSession(a Audio, musicVolume, effectsVolume float64) *Session {
	if a == nil {
		a = Nop{}
	}
	return &Session{
		audio:         a,
		musicVolume:   audio.Clamp(musicVolume),
		effectsVolume: audio.Clamp(effectsVolume),
	}
}

// Open plays the menu music and pushes the initial volumes
func (s *Session) Open() {
	s.emit(protocol.Event{Kind: protocol.EvMusicVolume, Volume: s.musicVolume})
	s.emit(protocol.Event{Kind: protocol.EvEffectsVolume, Volume: s.effectsVolume})
	s.emit(protocol.Event{Kind: protocol.EvPlayMusic, Pattern: music.Ambient})
}

// Start begins a new run. A run already in progress is left alone.
func (s *Session) Start() {
	if s.phase == PhaseRunning {
		return
	}
	s.phase = PhaseRunning
	s.score = 0
	s.milestones = 0
	s.airborne = false
	s.doubleJumped = false
	s.emit(protocol.Event{Kind: protocol.EvSwitchPattern, Pattern: music.Running})
}

// Jump jumps from the ground, or double jumps once while airborne
func (s *Session) Jump() {
	if s.phase != PhaseRunning {
		return
	}
	switch {
	case !s.airborne:
		s.airborne = true
		s.emit(protocol.Event{Kind: protocol.EvJump})
	case !s.doubleJumped:
		s.doubleJumped = true
		s.emit(protocol.Event{Kind: protocol.EvDoubleJump})
	}
}

// Land puts the runner back on the ground
func (s *Session) Land() {
	s.airborne = false
	s.doubleJumped = false
}

// Shoot fires at bugs
func (s *Session) Shoot() {
	if s.phase != PhaseRunning {
		return
	}
	s.emit(protocol.Event{Kind: protocol.EvShoot})
}

// Collect picks up an item and scores it
func (s *Session) Collect(item sfx.Item) {
	if s.phase != PhaseRunning {
		return
	}
	s.emit(protocol.Event{Kind: protocol.EvCollect, Item: string(item)})
	s.addScore(ItemPoints[sfx.ParseItem(string(item))])
}

// DestroyBug scores a shot bug
func (s *Session) DestroyBug() {
	if s.phase != PhaseRunning {
		return
	}
	s.emit(protocol.Event{Kind: protocol.EvBugDestroy})
	s.addScore(BugPoints)
}

// SpawnEnemy announces a new bug
func (s *Session) SpawnEnemy() {
	if s.phase != PhaseRunning {
		return
	}
	s.emit(protocol.Event{Kind: protocol.EvEnemySpawn})
}

// Hit ends the run
func (s *Session) Hit() {
	if s.phase != PhaseRunning {
		return
	}
	s.phase = PhaseOver
	s.airborne = false
	s.doubleJumped = false
	s.emit(protocol.Event{Kind: protocol.EvGameOver})
	s.emit(protocol.Event{Kind: protocol.EvSwitchPattern, Pattern: music.GameOver})
}

// StopMusic silences the background music
func (s *Session) StopMusic() {
	s.emit(protocol.Event{Kind: protocol.EvStopMusic})
}

// ChangeMusicVolume moves the music volume by delta steps
func (s *Session) ChangeMusicVolume(delta int) {
	s.musicVolume = audio.Clamp(s.musicVolume + float64(delta)*VolumeStep)
	s.emit(protocol.Event{Kind: protocol.EvMusicVolume, Volume: s.musicVolume})
}

// ChangeEffectsVolume moves the effects volume by delta steps
func (s *Session) ChangeEffectsVolume(delta int) {
	s.effectsVolume = audio.Clamp(s.effectsVolume + float64(delta)*VolumeStep)
	s.emit(protocol.Event{Kind: protocol.EvEffectsVolume, Volume: s.effectsVolume})
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Phase:         s.phase,
		Score:         s.score,
		Milestones:    s.milestones,
		Airborne:      s.airborne,
		DoubleJumped:  s.doubleJumped,
		MusicVolume:   s.musicVolume,
		EffectsVolume: s.effectsVolume,
		LastEvent:     s.lastEvent,
	}
}

func (s *Session) addScore(points int) {
	before := s.score / MilestoneEvery
	s.score += points
	if s.score/MilestoneEvery > before {
		s.milestones++
		s.emit(protocol.Event{Kind: protocol.EvMilestone})
	}
}

func (s *Session) emit(ev protocol.Event) {
	s.lastEvent = ev.Kind.String()
	s.audio.Dispatch(ev)
}
