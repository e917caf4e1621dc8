/*
Package realtime contains the room membership and event-fanout coordinator for
collaborative boards and mind maps.

This file defines the Coordinator, the single-consumer actor that owns the
connection registry and room directory. Every membership change and every
relayed mutation event is submitted as a typed command on one queue and handled
to completion by one goroutine, so the two tables never see interleaved updates
and per-connection ordering follows arrival order.
*/
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"thinksync/internal/pkg/logx"
	"thinksync/internal/pkg/metrics"
)

// commandQueueBuffer bounds the number of queued commands before submitters block.
const commandQueueBuffer = 1024

// Peer is the send side of one live connection. Queue must not block; it
// reports false when the frame was dropped (slow or closed peer).
type Peer interface {
	Queue(frame []byte) bool
}

type cmdKind int

const (
	cmdAttach cmdKind = iota
	cmdJoin
	cmdLeave
	cmdDisconnect
	cmdRelay
)

type command struct {
	kind     cmdKind
	connID   string
	roomID   string
	identity Identity
	peer     Peer

	// relay fields
	event   string
	payload json.RawMessage
	remote  bool
}

// Coordinator tracks which connection occupies which room, broadcasts presence
// changes, and fans mutation events out to the right peers. All state is owned
// by the Run loop; the exported methods only enqueue commands.
type Coordinator struct {
	registry *connRegistry
	rooms    *roomDirectory
	peers    map[string]Peer

	cmds     chan command
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	bus    *Bus
	logger zerolog.Logger
}

// NewCoordinator constructs a Coordinator and starts its event loop.
// The bus is optional; pass nil to keep fanout process-local.
func NewCoordinator(bus *Bus) *Coordinator {
	c := &Coordinator{
		registry: newConnRegistry(),
		rooms:    newRoomDirectory(),
		peers:    make(map[string]Peer),
		cmds:     make(chan command, commandQueueBuffer),
		stopChan: make(chan struct{}),
		bus:      bus,
		logger:   logx.Logger().With().Str("component", "Coordinator").Logger(),
	}

	c.wg.Add(1)
	go c.run()

	if bus != nil {
		bus.Start(c)
	}

	return c
}

// run is the single consumer of the command queue.
func (c *Coordinator) run() {
	defer c.wg.Done()

	c.logger.Info().Msg("Coordinator event loop started.")

	for {
		select {
		case cmd := <-c.cmds:
			c.dispatch(cmd)
		case <-c.stopChan:
			// Drain whatever was already queued so disconnect cleanup
			// submitted before shutdown still runs.
			for {
				select {
				case cmd := <-c.cmds:
					c.dispatch(cmd)
				default:
					c.logger.Info().Msg("Coordinator event loop stopped.")
					return
				}
			}
		}
	}
}

func (c *Coordinator) dispatch(cmd command) {
	switch cmd.kind {
	case cmdAttach:
		c.handleAttach(cmd.connID, cmd.peer)
	case cmdJoin:
		c.handleJoin(cmd.connID, cmd.roomID, cmd.identity)
	case cmdLeave:
		c.handleLeave(cmd.connID, cmd.roomID)
	case cmdDisconnect:
		c.handleDisconnect(cmd.connID)
	case cmdRelay:
		c.handleRelay(cmd.connID, cmd.event, cmd.roomID, cmd.payload, cmd.remote)
	}

	metrics.OpenConnections.Set(float64(len(c.peers)))
	metrics.ActiveRooms.Set(float64(c.rooms.roomCount()))
}

// submit enqueues a command unless the coordinator is shutting down.
func (c *Coordinator) submit(cmd command) {
	select {
	case c.cmds <- cmd:
	case <-c.stopChan:
	}
}

// Attach registers the send side of a new connection. It must be called before
// any other command for that connection is submitted.
func (c *Coordinator) Attach(connID string, peer Peer) {
	c.submit(command{kind: cmdAttach, connID: connID, peer: peer})
}

// Join moves the connection into roomID under the given identity, leaving any
// previously occupied room first.
func (c *Coordinator) Join(connID, roomID string, identity Identity) {
	c.submit(command{kind: cmdJoin, connID: connID, roomID: roomID, identity: identity})
}

// Leave removes the connection from roomID.
func (c *Coordinator) Leave(connID, roomID string) {
	c.submit(command{kind: cmdLeave, connID: connID, roomID: roomID})
}

// Disconnect runs the leave path for whatever room the connection occupies and
// discards its send side. The transport layer calls this exactly once per
// connection when the underlying session ends.
func (c *Coordinator) Disconnect(connID string) {
	c.submit(command{kind: cmdDisconnect, connID: connID})
}

// Relay forwards a mutation event to every occupant of roomID except the sender.
// The payload is never interpreted beyond the room tag already extracted by the
// transport gateway.
func (c *Coordinator) Relay(senderConnID, event, roomID string, payload json.RawMessage) {
	c.submit(command{kind: cmdRelay, connID: senderConnID, event: event, roomID: roomID, payload: payload})
}

// relayRemote injects an event that originated on another instance. There is no
// local sender to exclude.
func (c *Coordinator) relayRemote(event, roomID string, payload json.RawMessage) {
	c.submit(command{kind: cmdRelay, event: event, roomID: roomID, payload: payload, remote: true})
}

// Shutdown stops the event loop after draining queued commands and closes the
// bus subscription if one is attached.
func (c *Coordinator) Shutdown() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()

	if c.bus != nil {
		c.bus.Close()
	}

	c.logger.Info().Msg("Coordinator shutdown complete.")
}

func (c *Coordinator) handleAttach(connID string, peer Peer) {
	c.peers[connID] = peer
	c.logger.Debug().Str("conn_id", connID).Msg("Connection attached.")
}

// handleJoin implements the join transition: evict from any prior room first so
// a connection occupies at most one room, no-op on a duplicate join, otherwise
// register and broadcast the point event plus the full roster.
func (c *Coordinator) handleJoin(connID, roomID string, identity Identity) {
	if prevRoom, ok := c.registry.currentRoom(connID); ok {
		if prevRoom == roomID {
			// Duplicate join to the same room: skip entirely to avoid
			// redundant broadcasts.
			c.logger.Debug().
				Str("conn_id", connID).
				Str("room_id", roomID).
				Msg("Duplicate join ignored.")
			return
		}
		c.removeAndAnnounce(connID, prevRoom)
	}

	c.rooms.ensureRoom(roomID)
	c.rooms.addOccupant(roomID, connID, identity)
	c.registry.recordRoom(connID, roomID)

	c.broadcastEvent(roomID, EventUserJoined, identity, connID)
	c.broadcastRoster(roomID)

	c.logger.Info().
		Str("conn_id", connID).
		Str("room_id", roomID).
		Str("user_id", identity.UserID).
		Int("occupants", len(c.rooms.occupantsOf(roomID))).
		Msg("Connection joined room.")
}

// handleLeave implements the explicit leave transition. A leave for a room the
// connection does not occupy is a benign no-op.
func (c *Coordinator) handleLeave(connID, roomID string) {
	c.removeAndAnnounce(connID, roomID)
}

// handleDisconnect runs the leave path for the connection's current room, then
// unconditionally clears its registry entry and discards its peer.
func (c *Coordinator) handleDisconnect(connID string) {
	if roomID, ok := c.registry.currentRoom(connID); ok {
		c.removeAndAnnounce(connID, roomID)
	}
	c.registry.clear(connID)
	delete(c.peers, connID)

	c.logger.Info().Str("conn_id", connID).Msg("Connection disconnected.")
}

// removeAndAnnounce removes the connection from roomID and, if it was present,
// broadcasts the departure point event and the updated roster to whoever
// remains. The registry entry is cleared only when it still points at roomID,
// guarding against stale leaves racing a re-join.
func (c *Coordinator) removeAndAnnounce(connID, roomID string) {
	removed, ok := c.rooms.removeOccupant(roomID, connID)
	if !ok {
		if current, found := c.registry.currentRoom(connID); found && current == roomID {
			c.registry.clear(connID)
		}
		return
	}

	if current, found := c.registry.currentRoom(connID); found && current == roomID {
		c.registry.clear(connID)
	}

	c.broadcastEvent(roomID, EventUserLeft, userLeftPayload{UserID: removed.UserID}, connID)

	if len(c.rooms.occupantsOf(roomID)) > 0 {
		c.broadcastRoster(roomID)
	} else {
		c.logger.Info().Str("room_id", roomID).Msg("Room empty, removed from directory.")
	}
}

// handleRelay forwards the payload unchanged to every occupant of roomID except
// the sender. A room with nobody else in it is a silent no-op.
func (c *Coordinator) handleRelay(senderConnID, event, roomID string, payload json.RawMessage, remote bool) {
	frame, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Failed to encode relay frame.")
		return
	}

	c.deliverToRoom(roomID, frame, senderConnID)
	metrics.RelayedEvents.WithLabelValues(event).Inc()

	if c.bus != nil && !remote {
		c.bus.Publish(BusMessage{Event: event, RoomID: roomID, Payload: payload})
	}
}

// broadcastRoster sends the complete occupant roster to every occupant of the
// room, the resync mechanism clients treat as replacing their local state.
func (c *Coordinator) broadcastRoster(roomID string) {
	occupants := c.rooms.occupantsOf(roomID)
	roster := make([]Identity, 0, len(occupants))
	for _, occ := range occupants {
		roster = append(roster, occ.Identity)
	}

	frame, err := encodeEnvelope(EventRoomUsers, roster)
	if err != nil {
		c.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to encode roster frame.")
		return
	}

	c.deliverToRoom(roomID, frame, "")
	metrics.PresenceBroadcasts.Inc()
}

// broadcastEvent sends a point event to the room, excluding excludeConnID.
func (c *Coordinator) broadcastEvent(roomID, event string, data any, excludeConnID string) {
	frame, err := encodeEnvelope(event, data)
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Failed to encode presence frame.")
		return
	}
	c.deliverToRoom(roomID, frame, excludeConnID)
}

// deliverToRoom queues the frame for every occupant except excludeConnID.
// A failed queue on one peer never aborts delivery to the others.
func (c *Coordinator) deliverToRoom(roomID string, frame []byte, excludeConnID string) {
	for _, occ := range c.rooms.occupantsOf(roomID) {
		if occ.ConnID == excludeConnID {
			continue
		}
		peer, ok := c.peers[occ.ConnID]
		if !ok {
			continue
		}
		if !peer.Queue(frame) {
			metrics.DroppedFrames.Inc()
			c.logger.Warn().
				Str("conn_id", occ.ConnID).
				Str("room_id", roomID).
				Msg("Peer send queue full, frame dropped.")
		}
	}
}
