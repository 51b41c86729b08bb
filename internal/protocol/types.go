package protocol

import (
	"encoding/gob"
)

// EventKind identifies an audio call made by the game
type EventKind int

const (
	EvPlayMusic EventKind = iota
	EvStopMusic
	EvSwitchPattern
	EvMusicVolume
	EvJump
	EvDoubleJump
	EvShoot
	EvCollect
	EvBugDestroy
	EvEnemySpawn
	EvMilestone
	EvGameOver
	EvEffectsVolume
)

var eventNames = map[EventKind]string{
	EvPlayMusic:     "play-music",
	EvStopMusic:     "stop-music",
	EvSwitchPattern: "switch-pattern",
	EvMusicVolume:   "music-volume",
	EvJump:          "jump",
	EvDoubleJump:    "double-jump",
	EvShoot:         "shoot",
	EvCollect:       "collect",
	EvBugDestroy:    "bug-destroy",
	EvEnemySpawn:    "enemy-spawn",
	EvMilestone:     "milestone",
	EvGameOver:      "game-over",
	EvEffectsVolume: "effects-volume",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// MessageType identifies the type of network message
type MessageType int

const (
	MsgHello MessageType = iota
	MsgWelcome
	MsgEvent
)

// Message is the wrapper for all network messages
type Message struct {
	Type    MessageType
	Payload interface{}
}

// Event is one audio call. Pattern is set for music events, Item for
// collect and Volume for the volume events.
type Event struct {
	Kind    EventKind
	Pattern string
	Item    string
	Volume  float64
}

// Hello is sent by a game connecting to an audio server
type Hello struct {
	Name string
}

// Welcome is the server's answer to Hello
type Welcome struct {
	Accepted bool
	Reason   string
	Patterns []string
}

func init() {
	gob.Register(Event{})
	gob.Register(Hello{})
	gob.Register(Welcome{})
}
