package tuning

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"snake-arena/server/internal/world"
	"snake-arena/server/logging"
)

// Tuning is the on-disk server configuration.
type Tuning struct {
	Addr       string `yaml:"addr"`
	TickRateHz int    `yaml:"tick_rate_hz"`
	// Seed fixes the world RNG; zero seeds from the clock.
	Seed      int64 `yaml:"seed"`
	SendQueue int   `yaml:"send_queue"`
	Pprof     bool  `yaml:"pprof"`

	World   World   `yaml:"world"`
	Logging Logging `yaml:"logging"`
}

type World struct {
	Width          float64  `yaml:"width"`
	Height         float64  `yaml:"height"`
	Speed          float64  `yaml:"speed"`
	PlayerRadius   float64  `yaml:"player_radius"`
	FoodRadius     float64  `yaml:"food_radius"`
	GrowPerFood    int      `yaml:"grow_per_food"`
	InitialLength  int      `yaml:"initial_length"`
	SegmentSpacing float64  `yaml:"segment_spacing"`
	FoodTarget     int      `yaml:"food_target"`
	SafeDistance   float64  `yaml:"safe_distance"`
	SpawnAttempts  int      `yaml:"spawn_attempts"`
	MaxPlayers     int      `yaml:"max_players"`
	Palette        []string `yaml:"palette"`
}

type Logging struct {
	Sinks       []string `yaml:"sinks"`
	MinSeverity string   `yaml:"min_severity"`
	BufferSize  int      `yaml:"buffer_size"`
	JSONPath    string   `yaml:"json_path"`
	ArchiveDir  string   `yaml:"archive_dir"`
	IndexPath   string   `yaml:"index_path"`
	Color       bool     `yaml:"color"`
}

var knownSinks = map[string]bool{
	"console": true,
	"json":    true,
	"zstd":    true,
	"sqlite":  true,
}

// Defaults mirrors world.DefaultConfig and logging.DefaultConfig.
func Defaults() Tuning {
	wc := world.DefaultConfig()
	lc := logging.DefaultConfig()
	return Tuning{
		Addr:       ":8080",
		TickRateHz: 30,
		SendQueue:  64,
		World: World{
			Width:          wc.Width,
			Height:         wc.Height,
			Speed:          wc.Speed,
			PlayerRadius:   wc.PlayerRadius,
			FoodRadius:     wc.FoodRadius,
			GrowPerFood:    wc.GrowPerFood,
			InitialLength:  wc.InitialLength,
			SegmentSpacing: wc.SegmentSpacing,
			FoodTarget:     wc.FoodTarget,
			SafeDistance:   wc.SafeDistance,
			SpawnAttempts:  wc.SpawnAttempts,
			MaxPlayers:     wc.MaxPlayers,
			Palette:        wc.Palette,
		},
		Logging: Logging{
			Sinks:       append([]string(nil), lc.EnabledSinks...),
			MinSeverity: lc.MinimumSeverity.String(),
			BufferSize:  lc.BufferSize,
			ArchiveDir:  lc.Archive.Dir,
			IndexPath:   lc.Index.Path,
		},
	}
}

// Load reads a YAML tuning file over Defaults. Keys missing from the file
// keep their default values; unknown keys are an error.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ApplyEnv overrides fields from ARENA_* variables. lookup is usually
// os.LookupEnv.
func (t *Tuning) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	if raw, ok := lookup("ARENA_ADDR"); ok && raw != "" {
		t.Addr = raw
	}
	if raw, ok := lookup("ARENA_TICK_RATE"); ok && raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid ARENA_TICK_RATE=%q: %w", raw, err)
		}
		t.TickRateHz = value
	}
	if raw, ok := lookup("ARENA_MAX_PLAYERS"); ok && raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid ARENA_MAX_PLAYERS=%q: %w", raw, err)
		}
		t.World.MaxPlayers = value
	}
	if raw, ok := lookup("ARENA_SEED"); ok && raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ARENA_SEED=%q: %w", raw, err)
		}
		t.Seed = value
	}
	if raw, ok := lookup("ARENA_LOG_SINKS"); ok {
		t.Logging.Sinks = logging.ParseSinkList(raw)
	}
	if raw, ok := lookup("ARENA_PPROF"); ok && raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid ARENA_PPROF=%q: %w", raw, err)
		}
		t.Pprof = value
	}
	return nil
}

// Validate reports the first unusable setting.
func (t Tuning) Validate() error {
	if strings.TrimSpace(t.Addr) == "" {
		return errors.New("tuning: addr must not be empty")
	}
	if t.TickRateHz <= 0 || t.TickRateHz > 1000 {
		return fmt.Errorf("tuning: tick_rate_hz must be in 1..1000, got %d", t.TickRateHz)
	}
	if t.SendQueue < 1 {
		return fmt.Errorf("tuning: send_queue must be at least 1, got %d", t.SendQueue)
	}
	if err := t.WorldConfig().Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	for _, sink := range t.Logging.Sinks {
		if !knownSinks[sink] {
			return fmt.Errorf("tuning: unknown log sink %q", sink)
		}
	}
	switch t.Logging.MinSeverity {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("tuning: unknown min_severity %q", t.Logging.MinSeverity)
	}
	if t.Logging.BufferSize < 0 {
		return fmt.Errorf("tuning: buffer_size must not be negative, got %d", t.Logging.BufferSize)
	}
	return nil
}

// WorldConfig converts the world section.
func (t Tuning) WorldConfig() world.Config {
	w := t.World
	return world.Config{
		Width:          w.Width,
		Height:         w.Height,
		Speed:          w.Speed,
		PlayerRadius:   w.PlayerRadius,
		FoodRadius:     w.FoodRadius,
		GrowPerFood:    w.GrowPerFood,
		InitialLength:  w.InitialLength,
		SegmentSpacing: w.SegmentSpacing,
		FoodTarget:     w.FoodTarget,
		SafeDistance:   w.SafeDistance,
		SpawnAttempts:  w.SpawnAttempts,
		MaxPlayers:     w.MaxPlayers,
		Palette:        append([]string(nil), w.Palette...),
	}
}

// LoggingConfig converts the logging section.
func (t Tuning) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = append([]string(nil), t.Logging.Sinks...)
	cfg.MinimumSeverity = logging.ParseSeverity(t.Logging.MinSeverity)
	if t.Logging.BufferSize > 0 {
		cfg.BufferSize = t.Logging.BufferSize
	}
	cfg.JSON.FilePath = t.Logging.JSONPath
	cfg.Console.UseColor = t.Logging.Color
	if t.Logging.ArchiveDir != "" {
		cfg.Archive.Dir = t.Logging.ArchiveDir
	}
	if t.Logging.IndexPath != "" {
		cfg.Index.Path = t.Logging.IndexPath
	}
	return cfg
}
