package proto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrUnknownCodec is returned for an unsupported codec name.
	ErrUnknownCodec = errors.New("proto: unknown codec")
	// ErrMalformed wraps any inbound payload that cannot be used.
	ErrMalformed = errors.New("proto: malformed message")
)

// Codec converts messages to and from websocket frames.
type Codec interface {
	Name() string
	// Binary reports whether frames must be sent as binary messages.
	Binary() bool
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Binary() bool                       { return false }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// msgpackCodec reuses the json struct tags so both encodings share field names.
type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

var (
	JSON    Codec = jsonCodec{}
	Msgpack Codec = msgpackCodec{}
)

// Codecs lists every supported codec, default first.
func Codecs() []Codec {
	return []Codec{JSON, Msgpack}
}

// CodecByName resolves a codec; an empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	wanted := strings.ToLower(strings.TrimSpace(name))
	if wanted == "" {
		return JSON, nil
	}
	for _, codec := range Codecs() {
		if codec.Name() == wanted {
			return codec, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

// Decode parses and validates an inbound client message. Anything unusable
// yields an error wrapping ErrMalformed.
func Decode(codec Codec, data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := codec.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch msg.Type {
	case TypeDir:
		if msg.DX == nil || msg.DY == nil {
			return ClientMessage{}, fmt.Errorf("%w: dir without dx/dy", ErrMalformed)
		}
		if !finite(*msg.DX) || !finite(*msg.DY) {
			return ClientMessage{}, fmt.Errorf("%w: non-finite direction", ErrMalformed)
		}
	case TypeRespawn:
	default:
		return ClientMessage{}, fmt.Errorf("%w: unknown type %q", ErrMalformed, msg.Type)
	}
	return msg, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
