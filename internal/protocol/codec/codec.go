// Package codec converts envelopes to and from websocket frames.
//
// Text frames carry the envelope as JSON. Binary frames carry the same
// envelope as a protobuf google.protobuf.Struct, so both framings share one
// schema.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/piramiden/internal/protocol"
)

// Framing is the websocket frame kind a message travels in
type Framing int

const (
	Text Framing = iota
	Binary
)

func (f Framing) String() string {
	if f == Binary {
		return "binary"
	}
	return "text"
}

// Encode serialises msg for the given framing
func Encode(msg *protocol.Message, f Framing) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")

	if f == Text {
		return append([]byte(nil), data...), nil
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	return proto.Marshal(st)
}

// Decode parses a frame into a Message
// Note: the caller owns the returned message and may hand it back with PutMessage
func Decode(data []byte, f Framing) (*protocol.Message, error) {
	if f == Binary {
		st := GetStruct()
		defer PutStruct(st)

		if err := proto.Unmarshal(data, st); err != nil {
			return nil, fmt.Errorf("decode binary frame: %w", err)
		}
		var err error
		if data, err = st.MarshalJSON(); err != nil {
			return nil, fmt.Errorf("decode binary frame: %w", err)
		}
	}

	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, fmt.Errorf("decode frame: missing type")
	}
	return msg, nil
}
