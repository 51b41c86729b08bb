package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/diegok/rundevrun-audio/internal/game"
	"github.com/diegok/rundevrun-audio/internal/sfx"
)

const (
	RunnerChar = '@'
	GroundChar = '▀' // ▀
	MeterChar  = '█' // █
	meterWidth = 10
)

// Status is what the board shows about the audio around the session
type Status struct {
	Mode      string   // local, server or remote
	Audio     string   // output state
	Pattern   string   // active music pattern
	Addresses []string // where games can reach this server
	Message   string
}

// Renderer handles rendering all screens
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer with the given screen
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// RenderBoard draws the sound board for a session
func (r *Renderer) RenderBoard(snap game.Snapshot, status Status) {
	r.screen.Clear()
	screenW, screenH := r.screen.Size()

	title := "=== RUN DEV RUN ==="
	titleStyle := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorWhite)
	r.screen.DrawText((screenW-len(title))/2, 1, title, titleStyle)

	phaseStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	if snap.Phase == game.PhaseOver {
		phaseStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	}
	r.screen.DrawText(4, 3, strings.ToUpper(snap.Phase.String()), phaseStyle)

	score := fmt.Sprintf("Score: %d   Milestones: %d", snap.Score, snap.Milestones)
	r.screen.DrawText(screenW-len(score)-4, 3, score, tcell.StyleDefault.Foreground(tcell.ColorYellow))

	r.renderTrack(snap, screenW)

	meterStyle := tcell.StyleDefault.Foreground(tcell.ColorTeal)
	r.screen.DrawText(4, 11, "Music   ", tcell.StyleDefault)
	r.renderMeter(12, 11, snap.MusicVolume, meterStyle)
	r.screen.DrawText(4, 12, "Effects ", tcell.StyleDefault)
	r.renderMeter(12, 12, snap.EffectsVolume, meterStyle)

	if status.Pattern != "" {
		r.screen.DrawText(4, 14, "Pattern: "+status.Pattern, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
	if snap.LastEvent != "" {
		r.screen.DrawText(4, 15, "Last:    "+snap.LastEvent, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}

	r.screen.DrawText(4, 17, "Items:", tcell.StyleDefault.Foreground(tcell.ColorGray))
	x := 11
	for i, item := range sfx.Items {
		label := fmt.Sprintf("%d %s", i+1, item)
		r.screen.DrawText(x, 17, label, GetItemStyle(i))
		x += len(label) + 3
	}

	if len(status.Addresses) > 0 {
		r.screen.DrawText(4, 19, "Server addresses:", tcell.StyleDefault.Foreground(tcell.ColorGray))
		for i, addr := range status.Addresses {
			r.screen.DrawText(6, 20+i, addr, tcell.StyleDefault.Foreground(tcell.ColorYellow))
		}
	}

	helpY := screenH - 2 - len(KeyHelp)
	for i, line := range KeyHelp {
		r.screen.DrawText(4, helpY+i, line, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}

	r.renderStatusBar(status, screenW, screenH)
	r.screen.Show()
}

// renderTrack draws the runner over the ground, raised while airborne
func (r *Renderer) renderTrack(snap game.Snapshot, screenW int) {
	const top, groundY = 5, 9

	trackW := screenW - 8
	if trackW < 4 {
		return
	}
	r.screen.DrawBox(3, top, trackW+2, groundY-top+2, tcell.StyleDefault.Foreground(tcell.ColorDarkGray))
	r.screen.FillRect(4, groundY, trackW, 1, tcell.StyleDefault.Foreground(tcell.ColorGreen), GroundChar)

	runnerY := groundY - 1
	switch {
	case snap.DoubleJumped:
		runnerY -= 2
	case snap.Airborne:
		runnerY--
	}
	style := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorWhite)
	if snap.Phase == game.PhaseOver {
		style = tcell.StyleDefault.Foreground(tcell.ColorRed)
	}
	r.screen.SetCell(8, runnerY, style, RunnerChar)
}

func (r *Renderer) renderMeter(x, y int, level float64, style tcell.Style) {
	filled := int(level*meterWidth + 0.5)
	for i := 0; i < meterWidth; i++ {
		ch := '.'
		if i < filled {
			ch = MeterChar
		}
		r.screen.SetCell(x+i, y, style, ch)
	}
	r.screen.DrawText(x+meterWidth+1, y, fmt.Sprintf("%3.0f%%", level*100), tcell.StyleDefault)
}

func (r *Renderer) renderStatusBar(status Status, screenW, screenH int) {
	statusY := screenH - 1
	statusStyle := tcell.StyleDefault.Background(tcell.ColorDarkGray).Foreground(tcell.ColorWhite)
	r.screen.FillRect(0, statusY, screenW, 1, statusStyle, ' ')

	text := fmt.Sprintf(" %s | audio: %s", status.Mode, status.Audio)
	if status.Message != "" {
		text += " | " + status.Message
	}
	if len(text) > screenW {
		text = text[:screenW]
	}
	r.screen.DrawText(0, statusY, text, statusStyle)
}

// RenderConnecting displays the connecting screen
func (r *Renderer) RenderConnecting(addr string) {
	r.screen.Clear()
	screenW, screenH := r.screen.Size()

	title := "RUN DEV RUN"
	titleStyle := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorTeal)
	r.screen.DrawText((screenW-len(title))/2, screenH/2-3, title, titleStyle)

	connectText := fmt.Sprintf("Connecting to audio server %s...", addr)
	r.screen.DrawText((screenW-len(connectText))/2, screenH/2, connectText, tcell.StyleDefault.Foreground(tcell.ColorYellow))

	r.screen.Show()
}

// RenderError displays an error screen
func (r *Renderer) RenderError(err string) {
	r.screen.Clear()
	screenW, screenH := r.screen.Size()

	title := "ERROR"
	titleStyle := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorRed)
	r.screen.DrawText((screenW-len(title))/2, screenH/2-2, title, titleStyle)

	maxErrLen := screenW - 4
	errMsg := err
	if maxErrLen > 3 && len(errMsg) > maxErrLen {
		errMsg = errMsg[:maxErrLen-3] + "..."
	}
	r.screen.DrawText((screenW-len(errMsg))/2, screenH/2, errMsg, tcell.StyleDefault.Foreground(tcell.ColorWhite))

	hintText := "Press any key to exit"
	r.screen.DrawText((screenW-len(hintText))/2, screenH/2+3, hintText, tcell.StyleDefault.Foreground(tcell.ColorGray))

	r.screen.Show()
}
