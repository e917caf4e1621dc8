package realtime

import (
	"encoding/json"
	"testing"
)

func TestIsRelayable(t *testing.T) {
	for _, event := range []string{
		EventDrawStart, EventDrawing, EventDrawEnd, EventCanvasClear,
		EventNodeUpdate, EventNodeAdd, EventNodeDelete, EventCursorMove,
	} {
		if !IsRelayable(event) {
			t.Fatalf("%s should be relayable", event)
		}
	}

	for _, event := range []string{EventJoinRoom, EventLeaveRoom, EventRoomUsers, EventUserJoined, EventUserLeft, "made-up"} {
		if IsRelayable(event) {
			t.Fatalf("%s should not be relayable", event)
		}
	}
}

func TestEncodeEnvelopeRoundTrip(t *testing.T) {
	frame, err := encodeEnvelope(EventUserJoined, Identity{UserID: "u1", UserName: "Alice"})
	if err != nil {
		t.Fatalf("encodeEnvelope: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if env.Event != EventUserJoined {
		t.Fatalf("event = %q, want %s", env.Event, EventUserJoined)
	}

	var id Identity
	if err := json.Unmarshal(env.Data, &id); err != nil {
		t.Fatalf("data payload: %v", err)
	}
	if id.UserID != "u1" || id.UserName != "Alice" {
		t.Fatalf("identity round trip = %+v", id)
	}
}

func TestRoomRefIgnoresForeignFields(t *testing.T) {
	var ref roomRef
	raw := []byte(`{"roomId":"board-42","x":10,"stroke":{"width":3}}`)
	if err := json.Unmarshal(raw, &ref); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ref.RoomID != "board-42" {
		t.Fatalf("roomId = %q, want board-42", ref.RoomID)
	}
}
