package app

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/diegok/rundevrun-audio/internal/audio"
	"github.com/diegok/rundevrun-audio/internal/client"
	"github.com/diegok/rundevrun-audio/internal/config"
	"github.com/diegok/rundevrun-audio/internal/game"
	"github.com/diegok/rundevrun-audio/internal/music"
	"github.com/diegok/rundevrun-audio/internal/server"
	"github.com/diegok/rundevrun-audio/internal/sfx"
	"github.com/diegok/rundevrun-audio/internal/ui"
)

const (
	frameInterval  = 16 * time.Millisecond
	statusInterval = time.Minute
)

// App wires the audio subsystem to a front end: the sound board screen or,
// in headless mode, nothing but the event server.
type App struct {
	cfg     *config.Config
	log     zerolog.Logger
	logFile *os.File

	screen   *ui.Screen
	renderer *ui.Renderer

	output  *audio.Output
	music   *music.Scheduler
	audio   game.Audio
	session *game.Session
	client  *client.Client
	server  *server.Server

	activated bool
	message   string

	quit     chan struct{}
	quitOnce sync.Once
	sigChan  chan os.Signal
}

// NewApp creates a new App instance with the given configuration.
func NewApp(cfg *config.Config) *App {
	return &App{
		cfg:  cfg,
		log:  zerolog.Nop(),
		quit: make(chan struct{}),
	}
}

// Run builds the audio stack and runs until the user quits or, headless,
// until SIGINT or SIGTERM.
func (a *App) Run() error {
	if err := a.setupLogger(); err != nil {
		return err
	}
	defer a.cleanup()

	if err := a.setupAudio(); err != nil {
		return err
	}

	if a.cfg.Headless {
		return a.runHeadless()
	}
	return a.runScreen()
}

func (a *App) setupLogger() error {
	var w io.Writer = io.Discard
	switch {
	case a.cfg.LogFile != "":
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		a.logFile = f
		w = f
	case a.cfg.Headless:
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	level := zerolog.InfoLevel
	if a.cfg.Debug {
		level = zerolog.DebugLevel
	}
	a.log = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return nil
}

// setupAudio picks where events go: a remote server, nowhere when muted,
// or the local speakers. With --server the same audio also plays events
// from remote games.
func (a *App) setupAudio() error {
	var patterns []string

	switch {
	case a.cfg.IsRemote():
		addr := a.cfg.ServerAddr
		if !hasPort(addr) {
			addr = fmt.Sprintf("%s:%d", addr, config.DefaultPort)
		}
		name := a.cfg.Name
		if name == "" {
			name = generateRandomName()
		}
		a.client = client.NewClient(a.log, name)
		if err := a.client.Connect(addr); err != nil {
			return err
		}
		a.audio = a.client

	case a.cfg.Mute:
		a.audio = game.Nop{}

	default:
		ps, err := music.LoadPatterns(a.cfg.PatternsFile)
		if err != nil {
			return err
		}
		patterns = ps.Names()

		a.output = audio.NewOutput(a.log, a.cfg.MasterVolume)
		musicBus := a.output.NewBus("music", a.cfg.MusicVolume)
		effectsBus := a.output.NewBus("effects", a.cfg.EffectsVolume)

		a.music = music.NewScheduler(a.log, musicBus, ps, clockwork.NewRealClock())
		effects := sfx.New(a.log, effectsBus)
		a.audio = game.NewLocal(a.log, a.music, effects)

		// bring the device up early; it stays suspended until the first sound
		if err := a.output.Open(); err != nil {
			a.log.Warn().Err(err).Msg("no audio device, continuing without sound")
		}
	}

	if a.cfg.IsServer {
		a.server = server.NewServer(a.log, fmt.Sprintf(":%d", a.cfg.Port), a.audio, patterns)
		if err := a.server.Start(); err != nil {
			return err
		}
	}
	return nil
}

// runHeadless serves remote games until interrupted
func (a *App) runHeadless() error {
	if a.output != nil {
		if err := a.output.Activate(); err != nil {
			a.log.Warn().Err(err).Msg("audio unavailable, events will be dropped")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info().Msg("shutting down")
		a.server.Stop()
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				a.logStatus()
			}
		}
	})

	for _, addr := range a.server.GetServerAddresses() {
		a.log.Info().Str("addr", addr).Msg("games can join at")
	}
	return g.Wait()
}

func (a *App) logStatus() {
	ev := a.log.Info().Int("connections", a.server.Clients())
	if a.output != nil {
		ev = ev.Str("output", a.output.State().String()).Float64("clock", a.output.CurrentTime())
	}
	if a.music != nil {
		ev = ev.Str("pattern", a.music.Pattern()).Bool("playing", a.music.IsPlaying())
	}
	ev.Msg("status")
}

// runScreen runs the sound board until the user quits
func (a *App) runScreen() error {
	screen, err := ui.InitScreen()
	if err != nil {
		return errors.Wrap(err, "failed to initialize screen")
	}
	a.screen = screen
	a.renderer = ui.NewRenderer(screen)
	a.session = game.NewSession(a.audio, a.cfg.MusicVolume, a.cfg.EffectsVolume)

	a.sigChan = make(chan os.Signal, 1)
	signal.Notify(a.sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-a.sigChan:
			a.stop()
		case <-a.quit:
		}
	}()

	a.message = "press any key to start the sound"
	return a.mainLoop()
}

// mainLoop is the main event loop that handles all input and rendering.
func (a *App) mainLoop() error {
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-a.quit:
				return
			}
		}
	}()

	var clientErr <-chan error
	if a.client != nil {
		clientErr = a.client.Error
	}

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.quit:
			return nil

		case ev := <-events:
			if a.handleEvent(ev) {
				return nil
			}

		case err := <-clientErr:
			a.renderer.RenderError(err.Error())
			a.screen.PollEvent()
			return err

		case <-ticker.C:
			a.render()
		}
	}
}

// handleEvent processes keyboard and other events.
// Returns true if the application should quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev.Key(), ev.Rune())

	case *tcell.EventResize:
		a.screen.Clear()
		a.render()
	}

	return false
}

func (a *App) handleKey(key tcell.Key, r rune) bool {
	action, item := ui.KeyToAction(key, r)
	if action == ui.ActQuit {
		return true
	}

	// the first key press is the gesture that lets sound start
	if !a.activated {
		a.activated = true
		a.message = ""
		a.session.Open()
	}
	a.handleAction(action, item)
	return false
}

func (a *App) handleAction(action ui.Action, item sfx.Item) {
	s := a.session
	switch action {
	case ui.ActStart:
		s.Start()
	case ui.ActJump:
		s.Jump()
	case ui.ActLand:
		s.Land()
	case ui.ActShoot:
		s.Shoot()
	case ui.ActCollect:
		s.Collect(item)
	case ui.ActDestroyBug:
		s.DestroyBug()
	case ui.ActSpawnEnemy:
		s.SpawnEnemy()
	case ui.ActHit:
		s.Hit()
	case ui.ActStopMusic:
		s.StopMusic()
	case ui.ActMusicUp:
		s.ChangeMusicVolume(1)
	case ui.ActMusicDown:
		s.ChangeMusicVolume(-1)
	case ui.ActEffectsUp:
		s.ChangeEffectsVolume(1)
	case ui.ActEffectsDown:
		s.ChangeEffectsVolume(-1)
	}
}

func (a *App) render() {
	a.renderer.RenderBoard(a.session.Snapshot(), a.status())
}

func (a *App) status() ui.Status {
	st := ui.Status{Mode: "local", Message: a.message}

	switch {
	case a.client != nil:
		st.Mode = "remote " + a.cfg.ServerAddr
		st.Audio = "remote"
		if !a.client.IsConnected() {
			st.Audio = "disconnected"
		}
	case a.output == nil:
		st.Audio = "muted"
	default:
		st.Audio = a.output.State().String()
	}

	if a.music != nil {
		st.Pattern = a.music.Pattern()
	}
	if a.server != nil {
		st.Mode = fmt.Sprintf("server :%d, %d games", a.cfg.Port, a.server.Clients())
		st.Addresses = a.server.GetServerAddresses()
	}
	return st
}

// cleanup shuts down all resources.
func (a *App) cleanup() {
	if a.music != nil {
		a.music.Stop()
	}

	if a.server != nil {
		a.server.Stop()
	}

	if a.client != nil {
		a.client.Close()
	}

	if a.output != nil {
		a.output.Close()
	}

	if a.screen != nil {
		a.screen.Fini()
	}

	if a.sigChan != nil {
		signal.Stop(a.sigChan)
		a.stop()
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
}

func (a *App) stop() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// hasPort checks if the address string contains a port number.
func hasPort(addr string) bool {
	return strings.Contains(addr, ":")
}

// generateRandomName creates a name for a game joining an audio server.
func generateRandomName() string {
	adjectives := []string{"Swift", "Brave", "Quick", "Sharp", "Bold", "Cool", "Fast", "Keen"}
	nouns := []string{"Dev", "Runner", "Coder", "Hacker", "Intern", "Ops", "Ace", "Hero"}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	adj := adjectives[r.Intn(len(adjectives))]
	noun := nouns[r.Intn(len(nouns))]
	num := r.Intn(100)

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
