package network

import (
	"encoding/json"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"type":"join_room","data":{"room_id":"r1"}}`))
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.Type != "join_room" {
		t.Errorf("Expected type join_room, got %s", env.Type)
	}

	var payload map[string]string
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("Data should carry the raw payload: %v", err)
	}
	if payload["room_id"] != "r1" {
		t.Errorf("Expected room_id r1, got %s", payload["room_id"])
	}
}

func TestParseEnvelope_Malformed(t *testing.T) {
	cases := []string{
		`{not json`,
		`"just a string"`,
		`[1,2,3]`,
		`{"data":{}}`,
		``,
	}
	for _, raw := range cases {
		if _, err := ParseEnvelope([]byte(raw)); err != ErrMalformedFrame {
			t.Errorf("Expected ErrMalformedFrame for %q, got %v", raw, err)
		}
	}
}

func TestEncodeEnvelope(t *testing.T) {
	data, err := EncodeEnvelope("roster", map[string]int{"count": 3})
	if err != nil {
		t.Fatalf("EncodeEnvelope failed: %v", err)
	}

	env, err := ParseEnvelope(data)
	if err != nil {
		t.Fatalf("Round trip failed: %v", err)
	}
	if env.Type != "roster" {
		t.Errorf("Expected type roster, got %s", env.Type)
	}
}

func TestEncodeEnvelope_NilPayload(t *testing.T) {
	data, err := EncodeEnvelope("game_start", nil)
	if err != nil {
		t.Fatalf("EncodeEnvelope failed: %v", err)
	}
	if string(data) != `{"type":"game_start"}` {
		t.Errorf("Nil payload should omit data, got %s", data)
	}
}
