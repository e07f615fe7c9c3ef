package network

import (
	"context"

	"snake-arena/server/logging"
)

const (
	// EventMessageDropped is emitted when an inbound client message is malformed or unusable.
	EventMessageDropped logging.EventType = "network.message_dropped"
	// EventFrameDropped is emitted when an outbound frame is discarded because the client queue is full.
	EventFrameDropped logging.EventType = "network.frame_dropped"
	// EventWriteFailed is emitted when writing to a client fails and the connection is torn down.
	EventWriteFailed logging.EventType = "network.write_failed"
)

// MessageDroppedPayload describes a discarded inbound message.
type MessageDroppedPayload struct {
	Reason string `json:"reason"`
	Size   int    `json:"size"`
}

// FrameDroppedPayload describes a discarded outbound frame.
type FrameDroppedPayload struct {
	Kind    string `json:"kind"`
	Dropped uint64 `json:"dropped"`
}

// WriteFailedPayload describes a failed socket write.
type WriteFailedPayload struct {
	Error string `json:"error"`
}

// MessageDropped publishes a debug event for an ignored client message.
func MessageDropped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MessageDroppedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMessageDropped,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}

// FrameDropped publishes a warning when a slow consumer loses a frame.
func FrameDropped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FrameDroppedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventFrameDropped,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}

// WriteFailed publishes a warning when a socket write fails.
func WriteFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload WriteFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventWriteFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}
