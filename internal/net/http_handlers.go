package net

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"snake-arena/server"
	"snake-arena/server/internal/net/proto"
	"snake-arena/server/internal/net/ws"
	"snake-arena/server/internal/observability"
	"snake-arena/server/internal/telemetry"
	"snake-arena/server/logging"
	"snake-arena/server/logging/sinks"
)

// EventIndex serves recent events for /events. *sinks.Index satisfies it.
type EventIndex interface {
	Recent(ctx context.Context, q sinks.EventQuery) ([]sinks.IndexedRecord, error)
}

// RouterStats reports event pipeline counters for /diagnostics.
type RouterStats interface {
	Stats() logging.RouterStats
}

type HTTPHandlerConfig struct {
	Logger        telemetry.Logger
	Events        EventIndex
	Router        RouterStats
	Observability observability.Config
	Now           func() time.Time
}

func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(nil)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		payload := struct {
			Status     string                     `json:"status"`
			ServerTime int64                      `json:"serverTime"`
			TickRate   int                        `json:"tickRate"`
			Arena      proto.WorldInfo            `json:"arena"`
			World      server.WorldStats          `json:"world"`
			Players    []server.DiagnosticsPlayer `json:"players"`
			Telemetry  any                        `json:"telemetry"`
			Events     *logging.RouterStats       `json:"events,omitempty"`
		}{
			Status:     "ok",
			ServerTime: now().UnixMilli(),
			TickRate:   hub.TickRate(),
			Arena:      hub.WorldInfo(),
			World:      hub.Stats(),
			Players:    hub.DiagnosticsSnapshot(),
			Telemetry:  hub.TelemetrySnapshot(),
		}
		if cfg.Router != nil {
			stats := cfg.Router.Stats()
			payload.Events = &stats
		}
		writeJSON(w, payload)
	})

	mux.HandleFunc("/events", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		if cfg.Events == nil {
			httpError(w, "event index disabled", nethttp.StatusServiceUnavailable)
			return
		}
		query, err := parseEventQuery(r)
		if err != nil {
			httpError(w, err.Error(), nethttp.StatusBadRequest)
			return
		}
		records, err := cfg.Events.Recent(r.Context(), query)
		if err != nil {
			logger.Printf("[events] query failed: %v", err)
			httpError(w, "query failed", nethttp.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []sinks.IndexedRecord{}
		}
		writeJSON(w, struct {
			Events []sinks.IndexedRecord `json:"events"`
		}{Events: records})
	})

	wsHandler := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger})
	mux.HandleFunc("/ws", wsHandler.Handle)

	if cfg.Observability.EnablePprofTrace {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return mux
}

type queryError string

func (e queryError) Error() string { return string(e) }

func parseEventQuery(r *nethttp.Request) (sinks.EventQuery, error) {
	values := r.URL.Query()
	query := sinks.EventQuery{
		Type:  values.Get("type"),
		Actor: values.Get("actor"),
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query, queryError("invalid limit")
		}
		query.Limit = limit
	}
	if raw := values.Get("before"); raw != "" {
		before, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || before < 0 {
			return query, queryError("invalid before")
		}
		query.Before = before
	}
	return query, nil
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
