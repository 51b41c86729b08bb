package music

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/diegok/rundevrun-audio/internal/synth"
)

// Names of the built-in patterns
const (
	Running  = "running"
	GameOver = "gameOver"
	Ambient  = "ambient"
)

//go:embed patterns.yaml
var builtinPatterns []byte

// Pattern is a looped melody over a bass line
type Pattern struct {
	Name         string
	Notes        []string
	Bass         []string
	NoteDuration float64 // seconds each melody note sounds
	Tempo        float64 // beats per minute, one note per beat
	Wave         synth.Waveform
}

// SecondsPerBeat is the spacing between consecutive notes
func (p *Pattern) SecondsPerBeat() float64 {
	return 60 / p.Tempo
}

// CycleDuration is the time it takes to play every note once
func (p *Pattern) CycleDuration() float64 {
	return float64(len(p.Notes)) * p.SecondsPerBeat()
}

// Validate checks the pattern invariants
func (p *Pattern) Validate() error {
	if len(p.Notes) == 0 {
		return errors.Errorf("pattern %q has no notes", p.Name)
	}
	if len(p.Notes) != len(p.Bass) {
		return errors.Errorf("pattern %q has %d notes but %d bass notes", p.Name, len(p.Notes), len(p.Bass))
	}
	if p.Tempo <= 0 {
		return errors.Errorf("pattern %q tempo must be positive, got %v", p.Name, p.Tempo)
	}
	if p.NoteDuration <= 0 {
		return errors.Errorf("pattern %q note duration must be positive, got %v", p.Name, p.NoteDuration)
	}
	return nil
}

// Patterns is a set of patterns by name
type Patterns map[string]*Pattern

// Names returns the pattern names in sorted order
func (ps Patterns) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type patternFile struct {
	Notes    []string `yaml:"notes"`
	Bass     []string `yaml:"bass"`
	Duration float64  `yaml:"duration"`
	Tempo    float64  `yaml:"tempo"`
	Wave     string   `yaml:"wave"`
}

// ParsePatterns decodes a YAML document of patterns keyed by name and
// validates each one.
func ParsePatterns(r io.Reader) (Patterns, error) {
	var raw map[string]patternFile
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode patterns")
	}

	patterns := make(Patterns, len(raw))
	for name, pf := range raw {
		wave, err := synth.ParseWaveform(pf.Wave)
		if err != nil {
			return nil, errors.Wrapf(err, "pattern %q", name)
		}
		p := &Pattern{
			Name:         name,
			Notes:        pf.Notes,
			Bass:         pf.Bass,
			NoteDuration: pf.Duration,
			Tempo:        pf.Tempo,
			Wave:         wave,
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		patterns[name] = p
	}
	return patterns, nil
}

// BuiltinPatterns returns the patterns shipped with the game
func BuiltinPatterns() Patterns {
	ps, err := ParsePatterns(bytes.NewReader(builtinPatterns))
	if err != nil {
		panic(errors.Wrap(err, "builtin patterns"))
	}
	return ps
}

// LoadPatterns returns the built-in patterns, overridden and extended by the
// patterns in path when path is not empty.
func LoadPatterns(path string) (Patterns, error) {
	ps := BuiltinPatterns()
	if path == "" {
		return ps, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open patterns file")
	}
	defer f.Close()

	extra, err := ParsePatterns(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	for name, p := range extra {
		ps[name] = p
	}
	return ps, nil
}
