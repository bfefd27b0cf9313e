// network/envelope.go
package network

import (
	"encoding/json"
	"errors"
)

// Envelope 是每帧承载的消息封包：type 字段区分消息种类
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

var ErrMalformedFrame = errors.New("malformed frame")

// ParseEnvelope decodes a single frame. A frame that is not a JSON object
// with a non-empty string "type" field is rejected.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, ErrMalformedFrame
	}
	if env.Type == "" {
		return nil, ErrMalformedFrame
	}
	return &env, nil
}

// EncodeEnvelope serializes an envelope once so broadcasts can share the bytes.
func EncodeEnvelope(msgType string, payload interface{}) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return json.Marshal(&Envelope{Type: msgType, Data: data})
}
