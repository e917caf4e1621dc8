/*
Package realtime contains the room membership and event-fanout coordinator for
collaborative boards and mind maps.

This file defines the wire-level event vocabulary exchanged over the WebSocket
connection: the envelope framing, membership event payloads, and the set of
mutation events that are relayed verbatim between room occupants.
*/
package realtime

import "encoding/json"

// Envelope is the framing for every message in both directions:
// a named event plus an opaque JSON data payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client -> server membership events.
const (
	EventJoinRoom  = "joinRoom"
	EventLeaveRoom = "leaveRoom"
)

// Server -> client presence events. EventRoomUsers carries the full roster and
// is the authoritative resync; the joined/left events are best-effort hints.
const (
	EventRoomUsers  = "roomUsers"
	EventUserJoined = "userJoined"
	EventUserLeft   = "userLeft"
)

// Mutation events relayed verbatim to every other occupant of the payload's room.
const (
	EventDrawStart   = "drawStart"
	EventDrawing     = "drawing"
	EventDrawEnd     = "drawEnd"
	EventCanvasClear = "canvasClear"
	EventNodeUpdate  = "nodeUpdate"
	EventNodeAdd     = "nodeAdd"
	EventNodeDelete  = "nodeDelete"
	EventCursorMove  = "cursorMove"
)

var relayableEvents = map[string]struct{}{
	EventDrawStart:   {},
	EventDrawing:     {},
	EventDrawEnd:     {},
	EventCanvasClear: {},
	EventNodeUpdate:  {},
	EventNodeAdd:     {},
	EventNodeDelete:  {},
	EventCursorMove:  {},
}

// IsRelayable reports whether the named event is forwarded through the relay
// rather than handled by the presence coordinator.
func IsRelayable(event string) bool {
	_, ok := relayableEvents[event]
	return ok
}

// Identity is the caller-supplied claim presented when joining a room.
// It is not verified by this package.
type Identity struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// JoinRoomPayload is the data of an EventJoinRoom envelope.
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// LeaveRoomPayload is the data of an EventLeaveRoom envelope.
type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// userLeftPayload is the point event emitted to a room when an occupant leaves.
type userLeftPayload struct {
	UserID string `json:"userId"`
}

// roomRef extracts only the target room from a relayed mutation payload.
// The rest of the payload is never interpreted.
type roomRef struct {
	RoomID string `json:"roomId"`
}

// encodeEnvelope marshals a named event with its payload into a single frame.
func encodeEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
