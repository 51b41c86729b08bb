package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/diegok/rundevrun-audio/internal/sfx"
)

func TestKeyToAction(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		rune rune
		want Action
		item sfx.Item
	}{
		{tcell.KeyEnter, 0, ActStart, ""},
		{tcell.KeyUp, 0, ActJump, ""},
		{tcell.KeyDown, 0, ActLand, ""},
		{tcell.KeyRune, ' ', ActJump, ""},
		{tcell.KeyRune, 'w', ActJump, ""},
		{tcell.KeyRune, 'S', ActLand, ""},
		{tcell.KeyRune, 'f', ActShoot, ""},
		{tcell.KeyRune, '1', ActCollect, sfx.Keyboard},
		{tcell.KeyRune, '2', ActCollect, sfx.Mouse},
		{tcell.KeyRune, '3', ActCollect, sfx.Screen},
		{tcell.KeyRune, '4', ActCollect, sfx.Laptop},
		{tcell.KeyRune, '5', ActNone, ""},
		{tcell.KeyRune, 'b', ActDestroyBug, ""},
		{tcell.KeyRune, 'e', ActSpawnEnemy, ""},
		{tcell.KeyRune, 'x', ActHit, ""},
		{tcell.KeyRune, 'm', ActStopMusic, ""},
		{tcell.KeyRune, '+', ActMusicUp, ""},
		{tcell.KeyRune, '-', ActMusicDown, ""},
		{tcell.KeyRune, ']', ActEffectsUp, ""},
		{tcell.KeyRune, '[', ActEffectsDown, ""},
		{tcell.KeyRune, 'q', ActQuit, ""},
		{tcell.KeyEscape, 0, ActQuit, ""},
		{tcell.KeyTab, 0, ActNone, ""},
	}

	for _, tt := range tests {
		got, item := KeyToAction(tt.key, tt.rune)
		if got != tt.want || item != tt.item {
			t.Errorf("KeyToAction(%v, %q): expected %v %q, got %v %q", tt.key, tt.rune, tt.want, tt.item, got, item)
		}
	}
}

func TestIsQuitKey(t *testing.T) {
	if !IsQuitKey(tcell.KeyRune, 'q') {
		t.Error("'q' should be quit key")
	}
	if !IsQuitKey(tcell.KeyRune, 'Q') {
		t.Error("'Q' should be quit key")
	}
	if !IsQuitKey(tcell.KeyEscape, 0) {
		t.Error("Escape should be quit key")
	}
	if !IsQuitKey(tcell.KeyCtrlC, 0) {
		t.Error("Ctrl+C should be quit key")
	}
	if IsQuitKey(tcell.KeyRune, 'x') {
		t.Error("'x' should not be quit key")
	}
}
