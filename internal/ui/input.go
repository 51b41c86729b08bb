package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/diegok/rundevrun-audio/internal/sfx"
)

// Action is something the player asked for with a key
type Action int

const (
	ActNone Action = iota
	ActStart
	ActJump
	ActLand
	ActShoot
	ActCollect
	ActDestroyBug
	ActSpawnEnemy
	ActHit
	ActStopMusic
	ActMusicUp
	ActMusicDown
	ActEffectsUp
	ActEffectsDown
	ActQuit
)

// KeyToAction converts a key event to an action. For ActCollect the
// collected item is returned as well.
func KeyToAction(key tcell.Key, r rune) (Action, sfx.Item) {
	if IsQuitKey(key, r) {
		return ActQuit, ""
	}

	switch key {
	case tcell.KeyEnter:
		return ActStart, ""
	case tcell.KeyUp:
		return ActJump, ""
	case tcell.KeyDown:
		return ActLand, ""
	case tcell.KeyRune:
	default:
		return ActNone, ""
	}

	switch r {
	case ' ', 'w', 'W':
		return ActJump, ""
	case 's', 'S':
		return ActLand, ""
	case 'f', 'F':
		return ActShoot, ""
	case '1', '2', '3', '4':
		return ActCollect, sfx.Items[r-'1']
	case 'b', 'B':
		return ActDestroyBug, ""
	case 'e', 'E':
		return ActSpawnEnemy, ""
	case 'x', 'X':
		return ActHit, ""
	case 'm', 'M':
		return ActStopMusic, ""
	case '+', '=':
		return ActMusicUp, ""
	case '-', '_':
		return ActMusicDown, ""
	case ']':
		return ActEffectsUp, ""
	case '[':
		return ActEffectsDown, ""
	}
	return ActNone, ""
}

// IsQuitKey returns true if the key should quit the application
func IsQuitKey(key tcell.Key, r rune) bool {
	if key == tcell.KeyEscape || key == tcell.KeyCtrlC {
		return true
	}
	if key == tcell.KeyRune && (r == 'q' || r == 'Q') {
		return true
	}
	return false
}

// KeyHelp lists the key bindings shown on the board
var KeyHelp = []string{
	"ENTER start   SPACE/W jump   S land   F shoot",
	"1-4 collect   B bug   E enemy   X hit   M stop music",
	"+/- music volume   [/] effects volume   Q quit",
}
