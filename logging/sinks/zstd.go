package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"snake-arena/server/logging"
)

// Archive appends events as JSON lines to zstd-compressed files rotated by
// the UTC hour of each event.
type Archive struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewArchive creates an archive writing <dir>/<prefix>-YYYY-MM-DD-HH.jsonl.zst.
// Files are opened lazily on the first event.
func NewArchive(cfg logging.ArchiveConfig) *Archive {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "events"
	}
	return &Archive{baseDir: cfg.Dir, prefix: prefix}
}

// Write satisfies logging.Sink.
func (a *Archive) Write(event logging.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	hour := eventTime(event).Format("2006-01-02-15")
	if hour != a.curHour {
		if err := a.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(NewRecord(event))
	if err != nil {
		return err
	}
	if _, err := a.w.Write(b); err != nil {
		return err
	}
	if err := a.w.WriteByte('\n'); err != nil {
		return err
	}
	return a.w.Flush()
}

// Close finalises the current frame so the file is a complete zstd stream.
func (a *Archive) Close(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closeLocked()
}

// PathForHour reports the file an event stamped in hour is written to.
func (a *Archive) PathForHour(hour string) string {
	return filepath.Join(a.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", a.prefix, hour))
}

func (a *Archive) rotateLocked(hour string) error {
	if err := a.closeLocked(); err != nil {
		return err
	}
	path := a.PathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	a.f = f
	a.enc = enc
	a.w = bufio.NewWriterSize(enc, 64*1024)
	a.curHour = hour
	return nil
}

func (a *Archive) closeLocked() error {
	var err error
	if a.w != nil {
		err = a.w.Flush()
	}
	if a.enc != nil {
		if closeErr := a.enc.Close(); err == nil {
			err = closeErr
		}
		a.enc = nil
	}
	if a.f != nil {
		if closeErr := a.f.Close(); err == nil {
			err = closeErr
		}
		a.f = nil
	}
	a.w = nil
	a.curHour = ""
	return err
}
