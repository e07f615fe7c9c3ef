package server

import (
	"sync/atomic"
	"time"
)

type telemetryCounters struct {
	ticks              atomic.Uint64
	tickDurationMicros atomic.Int64
	overruns           atomic.Uint64
	overrunStreak      atomic.Uint64
	framesSent         atomic.Uint64
	framesDropped      atomic.Uint64
	bytesSent          atomic.Uint64
	lastBroadcastBytes atomic.Uint64
	writeFailures      atomic.Uint64
	joins              atomic.Uint64
	rejections         atomic.Uint64
	disconnects        atomic.Uint64
	eliminations       atomic.Uint64
	foodConsumed       atomic.Uint64
	malformedMessages  atomic.Uint64
}

type telemetrySnapshot struct {
	Ticks              uint64 `json:"ticks"`
	TickDurationMicros int64  `json:"tickDurationMicros"`
	Overruns           uint64 `json:"overruns"`
	OverrunStreak      uint64 `json:"overrunStreak"`
	FramesSent         uint64 `json:"framesSent"`
	FramesDropped      uint64 `json:"framesDropped"`
	BytesSent          uint64 `json:"bytesSent"`
	LastBroadcastBytes uint64 `json:"lastBroadcastBytes"`
	WriteFailures      uint64 `json:"writeFailures"`
	Joins              uint64 `json:"joins"`
	Rejections         uint64 `json:"rejections"`
	Disconnects        uint64 `json:"disconnects"`
	Eliminations       uint64 `json:"eliminations"`
	FoodConsumed       uint64 `json:"foodConsumed"`
	MalformedMessages  uint64 `json:"malformedMessages"`
}

func newTelemetryCounters() *telemetryCounters {
	return &telemetryCounters{}
}

// RecordBroadcast counts one tick's fan-out: frames queued and the size of
// each distinct encoding.
func (t *telemetryCounters) RecordBroadcast(frames int, bytes int) {
	if frames < 0 {
		frames = 0
	}
	if bytes < 0 {
		bytes = 0
	}
	t.framesSent.Add(uint64(frames))
	t.bytesSent.Add(uint64(bytes))
	t.lastBroadcastBytes.Store(uint64(bytes))
}

// RecordTick stores the latest step duration and returns the current
// overrun streak.
func (t *telemetryCounters) RecordTick(duration time.Duration, overrun bool) uint64 {
	t.ticks.Add(1)
	micros := duration.Microseconds()
	if micros < 0 {
		micros = 0
	}
	t.tickDurationMicros.Store(micros)
	if !overrun {
		t.overrunStreak.Store(0)
		return 0
	}
	t.overruns.Add(1)
	return t.overrunStreak.Add(1)
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		Ticks:              t.ticks.Load(),
		TickDurationMicros: t.tickDurationMicros.Load(),
		Overruns:           t.overruns.Load(),
		OverrunStreak:      t.overrunStreak.Load(),
		FramesSent:         t.framesSent.Load(),
		FramesDropped:      t.framesDropped.Load(),
		BytesSent:          t.bytesSent.Load(),
		LastBroadcastBytes: t.lastBroadcastBytes.Load(),
		WriteFailures:      t.writeFailures.Load(),
		Joins:              t.joins.Load(),
		Rejections:         t.rejections.Load(),
		Disconnects:        t.disconnects.Load(),
		Eliminations:       t.eliminations.Load(),
		FoodConsumed:       t.foodConsumed.Load(),
		MalformedMessages:  t.malformedMessages.Load(),
	}
}
