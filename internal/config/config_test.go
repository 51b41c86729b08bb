package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := ParseArgs(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IsServer || cfg.IsRemote() {
		t.Error("expected local mode by default")
	}
	if cfg.Port != DefaultPort {
		t.Errorf("expected port %d, got %d", DefaultPort, cfg.Port)
	}
	if cfg.MusicVolume != DefaultMusicVolume {
		t.Errorf("expected music volume %v, got %v", DefaultMusicVolume, cfg.MusicVolume)
	}
	if cfg.EffectsVolume != DefaultEffectsVolume {
		t.Errorf("expected effects volume %v, got %v", DefaultEffectsVolume, cfg.EffectsVolume)
	}
	if cfg.MasterVolume != DefaultMasterVolume {
		t.Errorf("expected master volume %v, got %v", DefaultMasterVolume, cfg.MasterVolume)
	}
}

func TestParseArgs_ServerMode(t *testing.T) {
	cfg, err := ParseArgs([]string{"--server", "--headless", "--port", "7000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsServer || !cfg.Headless {
		t.Error("expected headless server")
	}
	if cfg.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Port)
	}
}

func TestParseArgs_JoinMode(t *testing.T) {
	cfg, err := ParseArgs([]string{"--join", "192.168.1.100", "--name", "runner"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsRemote() {
		t.Error("expected remote mode")
	}
	if cfg.ServerAddr != "192.168.1.100" {
		t.Errorf("expected ServerAddr '192.168.1.100', got '%s'", cfg.ServerAddr)
	}
	if cfg.Name != "runner" {
		t.Errorf("expected name 'runner', got '%s'", cfg.Name)
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"server and join", []string{"--server", "--join", "localhost"}, "both"},
		{"headless without server", []string{"--headless"}, "requires --server"},
		{"port zero", []string{"--port", "0"}, "port"},
		{"port too high", []string{"--port", "70000"}, "port"},
		{"music volume", []string{"--music-volume", "1.5"}, "music-volume"},
		{"sfx volume", []string{"--sfx-volume", "-0.1"}, "sfx-volume"},
		{"master volume", []string{"--master-volume", "2"}, "master-volume"},
		{"unknown flag", []string{"--points", "10"}, "points"},
		{"missing config", []string{"--config", "/nonexistent/rundevrun.yaml"}, "config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rundevrun.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestParseArgs_ConfigFile(t *testing.T) {
	path := writeConfig(t, `
server: true
port: 6000
music_volume: 0.1
sfx_volume: 0.9
debug: true
log: audio.log
`)

	cfg, err := ParseArgs([]string{"--config", path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsServer {
		t.Error("expected server from file")
	}
	if cfg.Port != 6000 {
		t.Errorf("expected port 6000, got %d", cfg.Port)
	}
	if cfg.MusicVolume != 0.1 || cfg.EffectsVolume != 0.9 {
		t.Errorf("expected volumes 0.1/0.9, got %v/%v", cfg.MusicVolume, cfg.EffectsVolume)
	}
	if cfg.MasterVolume != DefaultMasterVolume {
		t.Errorf("expected default master volume, got %v", cfg.MasterVolume)
	}
	if !cfg.Debug || cfg.LogFile != "audio.log" {
		t.Errorf("expected debug logging to audio.log, got %v %q", cfg.Debug, cfg.LogFile)
	}
}

func TestParseArgs_FlagsOverrideConfigFile(t *testing.T) {
	path := writeConfig(t, "port: 6000\nmusic_volume: 0.1\nmute: true\n")

	cfg, err := ParseArgs([]string{"--config", path, "--port", "6001", "--mute=false"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 6001 {
		t.Errorf("expected flag port 6001, got %d", cfg.Port)
	}
	if cfg.Mute {
		t.Error("expected --mute=false to win over the file")
	}
	if cfg.MusicVolume != 0.1 {
		t.Errorf("expected music volume from file, got %v", cfg.MusicVolume)
	}
}

func TestParseArgs_ConfigFileValidated(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad volume", "sfx_volume: 3\n"},
		{"unknown key", "points: 10\n"},
		{"headless only", "headless: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseArgs([]string{"--config", writeConfig(t, tt.content)}); err == nil {
				t.Error("expected error")
			}
		})
	}
}
