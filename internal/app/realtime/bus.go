/*
Package realtime contains the room membership and event-fanout coordinator for
collaborative boards and mind maps.

This file defines the optional Redis relay bus. When several server instances
run behind a load balancer, mutation events published here reach occupants whose
connections live on other instances. Presence stays process-local: the bus
carries relayed payloads only, never membership state.
*/
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"thinksync/internal/pkg/logx"
	"thinksync/internal/pkg/randx"
)

const busChannel = "thinksync:relay"

// publishQueueBuffer bounds pending publishes; the coordinator never blocks on
// Redis I/O, excess messages are dropped.
const publishQueueBuffer = 512

// BusMessage is one relayed mutation event crossing instances.
type BusMessage struct {
	Origin  string          `json:"origin"`
	Event   string          `json:"event"`
	RoomID  string          `json:"roomId"`
	Payload json.RawMessage `json:"payload"`
}

// Bus fans relayed events out to sibling instances over Redis pub/sub.
type Bus struct {
	rdb      *redis.Client
	instance string

	out      chan BusMessage
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger zerolog.Logger
}

// NewBus connects to Redis and verifies connectivity.
func NewBus(ctx context.Context, addr string, db int) (*Bus, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	instance := randx.ConnectionID()

	return &Bus{
		rdb:      rdb,
		instance: instance,
		out:      make(chan BusMessage, publishQueueBuffer),
		stopChan: make(chan struct{}),
		logger:   logx.Logger().With().Str("component", "Bus").Str("instance", instance).Logger(),
	}, nil
}

// Start launches the publish and subscribe loops, delivering inbound messages
// from other instances into the coordinator's command queue.
func (b *Bus) Start(coord *Coordinator) {
	b.wg.Add(2)
	go b.publishLoop()
	go b.subscribeLoop(coord)
}

// Publish enqueues a message for delivery to sibling instances. It never
// blocks; when the queue is full the message is dropped, matching the
// fire-and-forget relay contract.
func (b *Bus) Publish(m BusMessage) {
	m.Origin = b.instance
	select {
	case b.out <- m:
	default:
		b.logger.Warn().Str("event", m.Event).Msg("Bus publish queue full, message dropped.")
	}
}

func (b *Bus) publishLoop() {
	defer b.wg.Done()

	ctx := context.Background()
	for {
		select {
		case m := <-b.out:
			raw, err := json.Marshal(m)
			if err != nil {
				continue
			}
			if err := b.rdb.Publish(ctx, busChannel, raw).Err(); err != nil {
				b.logger.Warn().Err(err).Msg("Bus publish failed.")
			}
		case <-b.stopChan:
			return
		}
	}
}

func (b *Bus) subscribeLoop(coord *Coordinator) {
	defer b.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := b.rdb.Subscribe(ctx, busChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var m BusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				b.logger.Warn().Err(err).Msg("Bus received invalid message.")
				continue
			}
			// Skip our own publishes; those were already delivered locally.
			if m.Origin == b.instance || m.RoomID == "" {
				continue
			}
			coord.relayRemote(m.Event, m.RoomID, m.Payload)

		case <-b.stopChan:
			return
		}
	}
}

// Close stops both loops and releases the Redis connection.
func (b *Bus) Close() {
	b.stopOnce.Do(func() { close(b.stopChan) })
	b.wg.Wait()
	_ = b.rdb.Close()
}
