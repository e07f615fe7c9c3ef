package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	server "snake-arena/server"
	servernet "snake-arena/server/internal/net"
	"snake-arena/server/internal/observability"
	"snake-arena/server/internal/telemetry"
	"snake-arena/server/internal/tuning"
	"snake-arena/server/logging"
	loggingSinks "snake-arena/server/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Logger        telemetry.Logger
	Observability observability.Config
	// TuningPath names a YAML tuning file; empty uses built-in defaults.
	TuningPath string
	// Addr overrides the tuning listen address when set.
	Addr string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Ready, when set, receives the bound listen address.
	Ready func(addr string)
}

// LoadTuning resolves the tuning file, environment overrides and flag
// overrides, then validates the result.
func LoadTuning(cfg Config) (tuning.Tuning, error) {
	t := tuning.Defaults()
	if cfg.TuningPath != "" {
		loaded, err := tuning.Load(cfg.TuningPath)
		if err != nil {
			return t, fmt.Errorf("load tuning: %w", err)
		}
		t = loaded
	}
	lookup := cfg.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := t.ApplyEnv(lookup); err != nil {
		return t, err
	}
	if cfg.Addr != "" {
		t.Addr = cfg.Addr
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// eventSinks holds the constructed sinks plus resources the router does not own.
type eventSinks struct {
	named []logging.NamedSink
	index *loggingSinks.Index
	files []io.Closer
}

func (s *eventSinks) closeFiles() {
	for _, f := range s.files {
		f.Close()
	}
	s.files = nil
}

func buildSinks(cfg logging.Config) (*eventSinks, error) {
	out := &eventSinks{}
	fail := func(err error) (*eventSinks, error) {
		for _, named := range out.named {
			named.Sink.Close(context.Background())
		}
		out.closeFiles()
		return nil, err
	}
	for _, name := range cfg.EnabledSinks {
		switch name {
		case "console":
			out.named = append(out.named, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsoleSink(os.Stdout, cfg.Console)})
		case "json":
			var w io.Writer = os.Stdout
			if cfg.JSON.FilePath != "" {
				if err := os.MkdirAll(filepath.Dir(cfg.JSON.FilePath), 0o755); err != nil {
					return fail(fmt.Errorf("json sink: %w", err))
				}
				f, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fail(fmt.Errorf("json sink: %w", err))
				}
				out.files = append(out.files, f)
				w = f
			}
			out.named = append(out.named, logging.NamedSink{Name: name, Sink: loggingSinks.NewJSON(w, cfg.JSON.FlushInterval)})
		case "zstd":
			out.named = append(out.named, logging.NamedSink{Name: name, Sink: loggingSinks.NewArchive(cfg.Archive)})
		case "sqlite":
			index, err := loggingSinks.OpenIndex(cfg.Index)
			if err != nil {
				return fail(fmt.Errorf("sqlite sink: %w", err))
			}
			out.index = index
			out.named = append(out.named, logging.NamedSink{Name: name, Sink: index})
		default:
			return fail(fmt.Errorf("unknown log sink %q", name))
		}
	}
	return out, nil
}

// Run serves the arena until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	tn, err := LoadTuning(cfg)
	if err != nil {
		return err
	}

	logConfig := tn.LoggingConfig()
	built, err := buildSinks(logConfig)
	if err != nil {
		return fmt.Errorf("failed to construct event sinks: %w", err)
	}
	defer built.closeFiles()

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, built.named)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	hub, err := server.NewHub(server.HubConfig{
		World:         tn.WorldConfig(),
		TickRate:      tn.TickRateHz,
		Seed:          tn.Seed,
		SendQueueSize: tn.SendQueue,
		Logger:        telemetryLogger,
	}, router)
	if err != nil {
		return fmt.Errorf("failed to construct hub: %w", err)
	}
	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer hub.Close()
	defer close(stop)

	observabilityCfg := cfg.Observability
	observabilityCfg.EnablePprofTrace = observabilityCfg.EnablePprofTrace || tn.Pprof

	handlerCfg := servernet.HTTPHandlerConfig{
		Logger:        telemetryLogger,
		Router:        router,
		Observability: observabilityCfg,
	}
	if built.index != nil {
		handlerCfg.Events = built.index
	}
	handler := servernet.NewHTTPHandler(hub, handlerCfg)

	listener, err := net.Listen("tcp", tn.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", tn.Addr, err)
	}
	srv := &http.Server{Addr: tn.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	telemetryLogger.Printf("server listening on %s (tick rate %d Hz)", listener.Addr(), tn.TickRateHz)
	if cfg.Ready != nil {
		cfg.Ready(listener.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	telemetryLogger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
