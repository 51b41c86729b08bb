package config

import (
	"flag"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Default values for configuration
const (
	DefaultPort          = 5555
	DefaultMusicVolume   = 0.3
	DefaultEffectsVolume = 0.5
	DefaultMasterVolume  = 1.0
)

// Config holds the application configuration
type Config struct {
	IsServer      bool
	ServerAddr    string
	Port          int
	Headless      bool
	Name          string
	MusicVolume   float64
	EffectsVolume float64
	MasterVolume  float64
	Mute          bool
	PatternsFile  string
	LogFile       string
	Debug         bool
}

// IsRemote reports whether events go to another process instead of the
// local speakers.
func (c *Config) IsRemote() bool {
	return c.ServerAddr != ""
}

// fileConfig mirrors the flags. Pointers tell unset keys from zero values.
type fileConfig struct {
	Server        *bool    `yaml:"server"`
	Join          *string  `yaml:"join"`
	Port          *int     `yaml:"port"`
	Headless      *bool    `yaml:"headless"`
	Name          *string  `yaml:"name"`
	MusicVolume   *float64 `yaml:"music_volume"`
	EffectsVolume *float64 `yaml:"sfx_volume"`
	MasterVolume  *float64 `yaml:"master_volume"`
	Mute          *bool    `yaml:"mute"`
	Patterns      *string  `yaml:"patterns"`
	Log           *string  `yaml:"log"`
	Debug         *bool    `yaml:"debug"`
}

// ParseArgs parses command line arguments and returns a Config. Values from
// the --config file are used for every flag not given on the command line.
func ParseArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("rundevrun-audio", flag.ContinueOnError)

	cfg := &Config{}
	fs.BoolVar(&cfg.IsServer, "server", false, "accept audio events from remote games")
	fs.StringVar(&cfg.ServerAddr, "join", "", "send audio events to the server at this address")
	fs.IntVar(&cfg.Port, "port", DefaultPort, "server port (1-65535)")
	fs.BoolVar(&cfg.Headless, "headless", false, "run the server without a screen")
	fs.StringVar(&cfg.Name, "name", "", "name sent to the audio server")
	fs.Float64Var(&cfg.MusicVolume, "music-volume", DefaultMusicVolume, "music volume (0-1)")
	fs.Float64Var(&cfg.EffectsVolume, "sfx-volume", DefaultEffectsVolume, "sound effects volume (0-1)")
	fs.Float64Var(&cfg.MasterVolume, "master-volume", DefaultMasterVolume, "master volume (0-1)")
	fs.BoolVar(&cfg.Mute, "mute", false, "disable audio")
	fs.StringVar(&cfg.PatternsFile, "patterns", "", "YAML file with extra music patterns")
	fs.StringVar(&cfg.LogFile, "log", "", "write logs to this file")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	configFile := fs.String("config", "", "YAML file with default options")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configFile != "" {
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

		fc, err := loadFile(*configFile)
		if err != nil {
			return nil, err
		}
		fc.apply(cfg, set)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks option combinations and ranges
func (c *Config) Validate() error {
	if c.IsServer && c.ServerAddr != "" {
		return errors.New("cannot specify both --server and --join")
	}
	if c.Headless && !c.IsServer {
		return errors.New("--headless requires --server")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	volumes := []struct {
		name  string
		value float64
	}{
		{"music-volume", c.MusicVolume},
		{"sfx-volume", c.EffectsVolume},
		{"master-volume", c.MasterVolume},
	}
	for _, v := range volumes {
		if v.value < 0 || v.value > 1 {
			return errors.Errorf("%s must be between 0 and 1, got %v", v.name, v.value)
		}
	}
	return nil
}

func loadFile(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config file")
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "parse config file %s", path)
	}
	return &fc, nil
}

// apply copies the file's values into cfg, skipping flags set on the
// command line.
func (fc *fileConfig) apply(cfg *Config, set map[string]bool) {
	setBool(&cfg.IsServer, fc.Server, !set["server"])
	setString(&cfg.ServerAddr, fc.Join, !set["join"])
	if fc.Port != nil && !set["port"] {
		cfg.Port = *fc.Port
	}
	setBool(&cfg.Headless, fc.Headless, !set["headless"])
	setString(&cfg.Name, fc.Name, !set["name"])
	setFloat(&cfg.MusicVolume, fc.MusicVolume, !set["music-volume"])
	setFloat(&cfg.EffectsVolume, fc.EffectsVolume, !set["sfx-volume"])
	setFloat(&cfg.MasterVolume, fc.MasterVolume, !set["master-volume"])
	setBool(&cfg.Mute, fc.Mute, !set["mute"])
	setString(&cfg.PatternsFile, fc.Patterns, !set["patterns"])
	setString(&cfg.LogFile, fc.Log, !set["log"])
	setBool(&cfg.Debug, fc.Debug, !set["debug"])
}

func setBool(dst *bool, v *bool, ok bool) {
	if v != nil && ok {
		*dst = *v
	}
}

func setString(dst *string, v *string, ok bool) {
	if v != nil && ok {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64, ok bool) {
	if v != nil && ok {
		*dst = *v
	}
}
