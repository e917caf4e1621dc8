/*
Package randx provides generation and validation of identifiers used across the server.
*/
package randx

import (
	"github.com/google/uuid"
)

// ConnectionID generates the unique identifier assigned to one WebSocket
// connection for its lifetime. Room bookkeeping is keyed by this value.
func ConnectionID() string {
	return uuid.New().String()
}

// SnapshotID generates the unique identifier embedded in an exported canvas
// snapshot's object key.
func SnapshotID() string {
	return uuid.New().String()
}

// IsValidID reports whether s parses as a UUID. Board and mind-map identifiers
// are UUIDs minted by the document store.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
