package realtime

import (
	"encoding/json"
	"testing"

	"thinksync/internal/pkg/logx"
)

// fakePeer captures queued frames. When full is set it refuses every frame,
// mimicking a slow consumer with a saturated send buffer.
type fakePeer struct {
	frames [][]byte
	full   bool
}

func (p *fakePeer) Queue(frame []byte) bool {
	if p.full {
		return false
	}
	p.frames = append(p.frames, frame)
	return true
}

func (p *fakePeer) reset() { p.frames = nil }

// events decodes the captured frames back into envelopes.
func (p *fakePeer) events(t *testing.T) []Envelope {
	t.Helper()
	out := make([]Envelope, 0, len(p.frames))
	for _, frame := range p.frames {
		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("peer received invalid frame %q: %v", frame, err)
		}
		out = append(out, env)
	}
	return out
}

// lastRoster finds the most recent roomUsers frame and decodes its roster.
func (p *fakePeer) lastRoster(t *testing.T) []Identity {
	t.Helper()
	envs := p.events(t)
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Event != EventRoomUsers {
			continue
		}
		var roster []Identity
		if err := json.Unmarshal(envs[i].Data, &roster); err != nil {
			t.Fatalf("invalid roster payload: %v", err)
		}
		return roster
	}
	t.Fatalf("peer never received a %s frame", EventRoomUsers)
	return nil
}

func (p *fakePeer) countEvent(t *testing.T, event string) int {
	t.Helper()
	n := 0
	for _, env := range p.events(t) {
		if env.Event == event {
			n++
		}
	}
	return n
}

// newTestCoordinator builds a coordinator without starting the event loop so
// tests can drive the handlers synchronously.
func newTestCoordinator() *Coordinator {
	return &Coordinator{
		registry: newConnRegistry(),
		rooms:    newRoomDirectory(),
		peers:    make(map[string]Peer),
		cmds:     make(chan command, commandQueueBuffer),
		stopChan: make(chan struct{}),
		logger:   logx.Logger().With().Str("component", "Coordinator").Logger(),
	}
}

func attach(c *Coordinator, connID string) *fakePeer {
	p := &fakePeer{}
	c.handleAttach(connID, p)
	return p
}

func userIDs(roster []Identity) []string {
	out := make([]string, len(roster))
	for i, id := range roster {
		out[i] = id.UserID
	}
	return out
}

func sameIDs(got []Identity, want ...string) bool {
	ids := userIDs(got)
	if len(ids) != len(want) {
		return false
	}
	for i := range ids {
		if ids[i] != want[i] {
			return false
		}
	}
	return true
}

func TestJoinFirstOccupantGetsSelfRoster(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})

	if got := alice.lastRoster(t); !sameIDs(got, "alice") {
		t.Fatalf("roster = %v, want [alice]", userIDs(got))
	}
	if n := alice.countEvent(t, EventUserJoined); n != 0 {
		t.Fatalf("joiner received %d userJoined frames about itself", n)
	}
}

func TestJoinAnnouncesToExistingOccupants(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	bob := attach(c, "conn-b")

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})
	alice.reset()

	c.handleJoin("conn-b", "board-42", Identity{UserID: "bob", UserName: "Bob"})

	if n := alice.countEvent(t, EventUserJoined); n != 1 {
		t.Fatalf("alice received %d userJoined frames, want 1", n)
	}
	if got := alice.lastRoster(t); !sameIDs(got, "alice", "bob") {
		t.Fatalf("alice roster = %v, want [alice bob]", userIDs(got))
	}

	// The joiner gets the roster but not the point event about itself.
	if n := bob.countEvent(t, EventUserJoined); n != 0 {
		t.Fatalf("bob received %d userJoined frames, want 0", n)
	}
	if got := bob.lastRoster(t); !sameIDs(got, "alice", "bob") {
		t.Fatalf("bob roster = %v, want [alice bob]", userIDs(got))
	}
}

func TestDuplicateJoinIsNoOp(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	bob := attach(c, "conn-b")

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})
	c.handleJoin("conn-b", "board-42", Identity{UserID: "bob"})
	alice.reset()
	bob.reset()

	c.handleJoin("conn-b", "board-42", Identity{UserID: "bob"})

	if len(alice.frames) != 0 || len(bob.frames) != 0 {
		t.Fatalf("duplicate join produced broadcasts: alice=%d bob=%d", len(alice.frames), len(bob.frames))
	}
	if occ := c.rooms.occupantsOf("board-42"); len(occ) != 2 {
		t.Fatalf("duplicate join changed occupancy: %d", len(occ))
	}
}

func TestJoinSwitchingRoomsEvictsFromPriorRoom(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	attach(c, "conn-b")

	c.handleJoin("conn-a", "board-1", Identity{UserID: "alice"})
	c.handleJoin("conn-b", "board-1", Identity{UserID: "bob"})
	alice.reset()

	c.handleJoin("conn-b", "board-2", Identity{UserID: "bob"})

	// Alice sees bob leave and a roster without him.
	if n := alice.countEvent(t, EventUserLeft); n != 1 {
		t.Fatalf("alice received %d userLeft frames, want 1", n)
	}
	if got := alice.lastRoster(t); !sameIDs(got, "alice") {
		t.Fatalf("alice roster = %v, want [alice]", userIDs(got))
	}

	if occ := c.rooms.occupantsOf("board-1"); len(occ) != 1 {
		t.Fatalf("board-1 occupancy = %d, want 1", len(occ))
	}
	if occ := c.rooms.occupantsOf("board-2"); len(occ) != 1 || occ[0].UserID != "bob" {
		t.Fatalf("board-2 occupants = %+v, want bob only", occ)
	}
	if room, _ := c.registry.currentRoom("conn-b"); room != "board-2" {
		t.Fatalf("registry points at %q, want board-2", room)
	}
}

func TestLeaveAnnouncesAndUpdatesRoster(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	bob := attach(c, "conn-b")

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})
	c.handleJoin("conn-b", "board-42", Identity{UserID: "bob"})
	alice.reset()
	bob.reset()

	c.handleLeave("conn-b", "board-42")

	if n := alice.countEvent(t, EventUserLeft); n != 1 {
		t.Fatalf("alice received %d userLeft frames, want 1", n)
	}
	if got := alice.lastRoster(t); !sameIDs(got, "alice") {
		t.Fatalf("alice roster = %v, want [alice]", userIDs(got))
	}
	if len(bob.frames) != 0 {
		t.Fatalf("leaver received %d frames about its own departure", len(bob.frames))
	}
	if _, ok := c.registry.currentRoom("conn-b"); ok {
		t.Fatalf("registry still tracks the departed connection")
	}
}

func TestLeaveRoomNotOccupiedIsNoOp(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	attach(c, "conn-b")

	c.handleJoin("conn-a", "board-1", Identity{UserID: "alice"})
	c.handleJoin("conn-b", "board-1", Identity{UserID: "bob"})
	alice.reset()

	c.handleLeave("conn-b", "board-99")

	if len(alice.frames) != 0 {
		t.Fatalf("leave of a non-occupied room produced broadcasts")
	}
	if room, _ := c.registry.currentRoom("conn-b"); room != "board-1" {
		t.Fatalf("registry entry was disturbed: %q", room)
	}
}

func TestLastLeaveDeletesRoom(t *testing.T) {
	c := newTestCoordinator()
	attach(c, "conn-a")

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})
	c.handleLeave("conn-a", "board-42")

	if c.rooms.roomCount() != 0 {
		t.Fatalf("room survived its last occupant leaving")
	}
}

func TestDisconnectUsesStoredRoom(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	attach(c, "conn-b")

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})
	c.handleJoin("conn-b", "board-42", Identity{UserID: "bob"})
	alice.reset()

	c.handleDisconnect("conn-b")

	if n := alice.countEvent(t, EventUserLeft); n != 1 {
		t.Fatalf("alice received %d userLeft frames, want 1", n)
	}
	if got := alice.lastRoster(t); !sameIDs(got, "alice") {
		t.Fatalf("alice roster = %v, want [alice]", userIDs(got))
	}
	if _, ok := c.registry.currentRoom("conn-b"); ok {
		t.Fatalf("registry entry survived disconnect")
	}
	if _, ok := c.peers["conn-b"]; ok {
		t.Fatalf("peer entry survived disconnect")
	}
}

func TestDisconnectWithoutRoomOnlyDropsPeer(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	attach(c, "conn-b")

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})
	alice.reset()

	c.handleDisconnect("conn-b")

	if len(alice.frames) != 0 {
		t.Fatalf("disconnect of a roomless connection produced broadcasts")
	}
	if _, ok := c.peers["conn-b"]; ok {
		t.Fatalf("peer entry survived disconnect")
	}
}

func TestRelayExcludesSenderAndKeepsPayload(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	bob := attach(c, "conn-b")
	carol := attach(c, "conn-c")

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})
	c.handleJoin("conn-b", "board-42", Identity{UserID: "bob"})
	c.handleJoin("conn-c", "board-42", Identity{UserID: "carol"})
	alice.reset()
	bob.reset()
	carol.reset()

	payload := json.RawMessage(`{"roomId":"board-42","x":4,"y":2,"color":"#ff0000"}`)
	c.handleRelay("conn-b", EventDrawing, "board-42", payload, false)

	if len(bob.frames) != 0 {
		t.Fatalf("sender received its own relayed event")
	}
	for name, p := range map[string]*fakePeer{"alice": alice, "carol": carol} {
		envs := p.events(t)
		if len(envs) != 1 {
			t.Fatalf("%s received %d frames, want 1", name, len(envs))
		}
		if envs[0].Event != EventDrawing {
			t.Fatalf("%s received event %q, want %s", name, envs[0].Event, EventDrawing)
		}
		if string(envs[0].Data) != string(payload) {
			t.Fatalf("%s payload altered in transit: %s", name, envs[0].Data)
		}
	}
}

func TestRelayToUnknownRoomIsNoOp(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	c.handleJoin("conn-a", "board-1", Identity{UserID: "alice"})
	alice.reset()

	c.handleRelay("conn-a", EventNodeUpdate, "board-99", json.RawMessage(`{"roomId":"board-99"}`), false)

	if len(alice.frames) != 0 {
		t.Fatalf("relay to unknown room leaked %d frames", len(alice.frames))
	}
}

func TestRelaySlowPeerDoesNotAbortDelivery(t *testing.T) {
	c := newTestCoordinator()
	attach(c, "conn-a")
	bob := attach(c, "conn-b")
	carol := attach(c, "conn-c")
	bob.full = true

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})
	c.handleJoin("conn-b", "board-42", Identity{UserID: "bob"})
	c.handleJoin("conn-c", "board-42", Identity{UserID: "carol"})
	carol.reset()

	c.handleRelay("conn-a", EventCursorMove, "board-42", json.RawMessage(`{"roomId":"board-42"}`), false)

	if n := carol.countEvent(t, EventCursorMove); n != 1 {
		t.Fatalf("delivery stopped at the saturated peer; carol got %d frames", n)
	}
}

func TestRemoteRelayReachesEveryOccupant(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	bob := attach(c, "conn-b")

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})
	c.handleJoin("conn-b", "board-42", Identity{UserID: "bob"})
	alice.reset()
	bob.reset()

	// Events from another instance have no local sender to exclude.
	c.handleRelay("", EventCanvasClear, "board-42", json.RawMessage(`{"roomId":"board-42"}`), true)

	for name, p := range map[string]*fakePeer{"alice": alice, "bob": bob} {
		if n := p.countEvent(t, EventCanvasClear); n != 1 {
			t.Fatalf("%s received %d canvasClear frames, want 1", name, n)
		}
	}
}

// TestThreeClientSession walks one room through the full lifecycle: three
// joins, a relayed draw, one disconnect.
func TestThreeClientSession(t *testing.T) {
	c := newTestCoordinator()
	alice := attach(c, "conn-a")
	bob := attach(c, "conn-b")
	carol := attach(c, "conn-c")

	c.handleJoin("conn-a", "board-42", Identity{UserID: "alice"})
	if got := alice.lastRoster(t); !sameIDs(got, "alice") {
		t.Fatalf("after first join, roster = %v", userIDs(got))
	}

	c.handleJoin("conn-b", "board-42", Identity{UserID: "bob"})
	if got := bob.lastRoster(t); !sameIDs(got, "alice", "bob") {
		t.Fatalf("after second join, bob roster = %v", userIDs(got))
	}
	if n := alice.countEvent(t, EventUserJoined); n != 1 {
		t.Fatalf("alice saw %d userJoined frames, want 1", n)
	}

	c.handleJoin("conn-c", "board-42", Identity{UserID: "carol"})
	for name, p := range map[string]*fakePeer{"alice": alice, "bob": bob, "carol": carol} {
		if got := p.lastRoster(t); !sameIDs(got, "alice", "bob", "carol") {
			t.Fatalf("after third join, %s roster = %v", name, userIDs(got))
		}
	}

	alice.reset()
	bob.reset()
	carol.reset()

	c.handleRelay("conn-b", EventDrawStart, "board-42", json.RawMessage(`{"roomId":"board-42","x":1,"y":1}`), false)
	if len(bob.frames) != 0 {
		t.Fatalf("sender received its own draw event")
	}
	if alice.countEvent(t, EventDrawStart) != 1 || carol.countEvent(t, EventDrawStart) != 1 {
		t.Fatalf("draw event did not reach the other occupants")
	}

	c.handleDisconnect("conn-c")
	for name, p := range map[string]*fakePeer{"alice": alice, "bob": bob} {
		if n := p.countEvent(t, EventUserLeft); n != 1 {
			t.Fatalf("%s saw %d userLeft frames, want 1", name, n)
		}
		if got := p.lastRoster(t); !sameIDs(got, "alice", "bob") {
			t.Fatalf("after disconnect, %s roster = %v", name, userIDs(got))
		}
	}
}

// TestCoordinatorLoopProcessesCommands exercises the public API end to end
// through the real event loop, relying on Shutdown draining the queue.
func TestCoordinatorLoopProcessesCommands(t *testing.T) {
	c := NewCoordinator(nil)

	alice := &fakePeer{}
	bob := &fakePeer{}
	c.Attach("conn-a", alice)
	c.Attach("conn-b", bob)
	c.Join("conn-a", "board-42", Identity{UserID: "alice"})
	c.Join("conn-b", "board-42", Identity{UserID: "bob"})
	c.Relay("conn-a", EventDrawing, "board-42", json.RawMessage(`{"roomId":"board-42"}`))
	c.Disconnect("conn-b")

	c.Shutdown()

	if n := bob.countEvent(t, EventDrawing); n != 1 {
		t.Fatalf("bob received %d drawing frames, want 1", n)
	}
	if n := alice.countEvent(t, EventUserLeft); n != 1 {
		t.Fatalf("alice received %d userLeft frames, want 1", n)
	}
	if got := alice.lastRoster(t); !sameIDs(got, "alice") {
		t.Fatalf("final roster = %v, want [alice]", userIDs(got))
	}
}
