package server

import "time"

const (
	writeWait        = 10 * time.Second
	pingInterval     = 25 * time.Second
	readDeadline     = 60 * time.Second
	defaultSendQueue = 64
	maxNameRunes     = 16
	maxMessageBytes  = 4096
)

// WriteWait bounds a single socket write.
func WriteWait() time.Duration { return writeWait }

// PingInterval is how often idle connections are pinged.
func PingInterval() time.Duration { return pingInterval }

// ReadDeadline is how long a connection may stay silent, pongs included.
func ReadDeadline() time.Duration { return readDeadline }

// MaxMessageBytes caps inbound client frames.
func MaxMessageBytes() int64 { return maxMessageBytes }
