/*
Package realtime contains the room membership and event-fanout coordinator for
collaborative boards and mind maps.

This file holds the two bookkeeping tables behind the presence coordinator: the
connection registry (connection -> current room) and the room directory
(room -> ordered occupant list). Both are plain data structures with no locking;
they are only ever touched from the coordinator's single event loop, which keeps
them mutually consistent.
*/
package realtime

// Occupant is one connection's membership record within a room.
type Occupant struct {
	ConnID string
	Identity
}

// connRegistry maps each live connection to the single room it occupies, if any.
type connRegistry struct {
	rooms map[string]string
}

func newConnRegistry() *connRegistry {
	return &connRegistry{rooms: make(map[string]string)}
}

// recordRoom notes that connID currently occupies roomID, replacing any prior entry.
func (r *connRegistry) recordRoom(connID, roomID string) {
	r.rooms[connID] = roomID
}

// currentRoom returns the room connID occupies, or false if it is in none.
func (r *connRegistry) currentRoom(connID string) (string, bool) {
	roomID, ok := r.rooms[connID]
	return roomID, ok
}

// clear removes connID's entry. Clearing an absent entry is a no-op.
func (r *connRegistry) clear(connID string) {
	delete(r.rooms, connID)
}

// roomDirectory maps each room to its occupants in join order. A room exists
// exactly while it has occupants: removal of the last occupant deletes the entry.
type roomDirectory struct {
	occupants map[string][]Occupant
}

func newRoomDirectory() *roomDirectory {
	return &roomDirectory{occupants: make(map[string][]Occupant)}
}

// ensureRoom creates an empty occupant list for roomID if none exists.
func (d *roomDirectory) ensureRoom(roomID string) {
	if _, ok := d.occupants[roomID]; !ok {
		d.occupants[roomID] = nil
	}
}

// addOccupant inserts the connection into the room, overwriting in place if the
// connection is already present so duplicate joins never yield two entries.
func (d *roomDirectory) addOccupant(roomID, connID string, identity Identity) {
	occ := Occupant{ConnID: connID, Identity: identity}
	list := d.occupants[roomID]
	for i := range list {
		if list[i].ConnID == connID {
			list[i] = occ
			return
		}
	}
	d.occupants[roomID] = append(list, occ)
}

// removeOccupant removes the connection's entry from the room and returns it.
// The second result is false if the room or the entry was absent. When the last
// occupant is removed the room entry itself is deleted.
func (d *roomDirectory) removeOccupant(roomID, connID string) (Occupant, bool) {
	list, ok := d.occupants[roomID]
	if !ok {
		return Occupant{}, false
	}
	for i := range list {
		if list[i].ConnID != connID {
			continue
		}
		removed := list[i]
		list = append(list[:i], list[i+1:]...)
		if len(list) == 0 {
			delete(d.occupants, roomID)
		} else {
			d.occupants[roomID] = list
		}
		return removed, true
	}
	return Occupant{}, false
}

// occupantsOf returns a snapshot of the room's occupants in join order.
// An unknown room yields an empty slice, not an error.
func (d *roomDirectory) occupantsOf(roomID string) []Occupant {
	list := d.occupants[roomID]
	out := make([]Occupant, len(list))
	copy(out, list)
	return out
}

// roomCount returns the number of rooms with at least one occupant.
func (d *roomDirectory) roomCount() int {
	return len(d.occupants)
}
