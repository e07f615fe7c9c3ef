package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snake-arena/server/internal/world"
	"snake-arena/server/logging"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultsMatchWorldDefaults(t *testing.T) {
	d := Defaults()
	if err := d.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	got := d.WorldConfig()
	want := world.DefaultConfig()
	if got.Width != want.Width || got.Speed != want.Speed || got.FoodTarget != want.FoodTarget ||
		got.MaxPlayers != want.MaxPlayers || len(got.Palette) != len(want.Palette) {
		t.Fatalf("world config drifted: got %+v want %+v", got, want)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
addr: ":9000"
tick_rate_hz: 20
world:
  max_players: 4
  food_target: 10
logging:
  sinks: [console, sqlite]
  min_severity: debug
`)
	tn, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.Addr != ":9000" || tn.TickRateHz != 20 {
		t.Fatalf("unexpected top level %+v", tn)
	}
	if tn.World.MaxPlayers != 4 || tn.World.FoodTarget != 10 {
		t.Fatalf("unexpected world %+v", tn.World)
	}
	if tn.World.Width != 2000 || tn.World.InitialLength != 10 {
		t.Fatalf("expected untouched keys to keep defaults, got %+v", tn.World)
	}
	if err := tn.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	lc := tn.LoggingConfig()
	if !lc.HasSink("sqlite") || lc.MinimumSeverity != logging.SeverityDebug {
		t.Fatalf("unexpected logging config %+v", lc)
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	tn, err := Load(writeFile(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.Addr != Defaults().Addr {
		t.Fatalf("expected defaults, got %+v", tn)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeFile(t, "tick_rate: 30\n"))
	if err == nil || !strings.Contains(err.Error(), "tick_rate") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ARENA_ADDR":        ":7777",
		"ARENA_TICK_RATE":   "60",
		"ARENA_MAX_PLAYERS": "2",
		"ARENA_SEED":        "99",
		"ARENA_LOG_SINKS":   "json, zstd",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	tn := Defaults()
	if err := tn.ApplyEnv(lookup); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if tn.Addr != ":7777" || tn.TickRateHz != 60 || tn.World.MaxPlayers != 2 || tn.Seed != 99 {
		t.Fatalf("unexpected tuning %+v", tn)
	}
	if len(tn.Logging.Sinks) != 2 || tn.Logging.Sinks[0] != "json" || tn.Logging.Sinks[1] != "zstd" {
		t.Fatalf("unexpected sinks %v", tn.Logging.Sinks)
	}

	env["ARENA_TICK_RATE"] = "fast"
	if err := tn.ApplyEnv(lookup); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Tuning){
		"tick rate":   func(t *Tuning) { t.TickRateHz = 0 },
		"addr":        func(t *Tuning) { t.Addr = " " },
		"send queue":  func(t *Tuning) { t.SendQueue = 0 },
		"world":       func(t *Tuning) { t.World.MaxPlayers = 0 },
		"sink":        func(t *Tuning) { t.Logging.Sinks = []string{"kafka"} },
		"severity":    func(t *Tuning) { t.Logging.MinSeverity = "loud" },
		"buffer size": func(t *Tuning) { t.Logging.BufferSize = -1 },
	}
	for name, mutate := range cases {
		tn := Defaults()
		mutate(&tn)
		if err := tn.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
