// Package hub maintains room-scoped websocket membership and fans state
// events out to every member, in the order the coordinator applied them.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dev-by-yash/FeudExe/internal/events"
	"github.com/dev-by-yash/FeudExe/internal/game"
)

// Sink receives decoded client commands. The coordinator implements it.
type Sink interface {
	HandleInbound(ctx context.Context, in *events.Inbound)
}

// ConnectionManager owns the per-room websocket connection pools.
type ConnectionManager struct {
	rooms map[game.RoomID]map[*Connection]bool
	mu    sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	sink     Sink

	// All deliveries go through one channel drained by a single loop, so
	// room members observe events in coordinator order.
	broadcastCh chan broadcastMessage
}

// Connection is one client's websocket, with its room membership and declared
// identity.
type Connection struct {
	ID     string
	Room   game.RoomID
	Role   events.ClientRole
	Team   game.TeamID
	Player string

	conn    *websocket.Conn
	send    chan []byte
	manager *ConnectionManager

	// done retires the write pump. Only unregister closes it; send stays
	// open for the connection's lifetime so the drain loop can never hit a
	// closed channel.
	done      chan struct{}
	closeOnce sync.Once

	ConnectedAt time.Time
}

// ConnectionConfig holds websocket tuning knobs.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns sane defaults for party-game traffic.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

type broadcastMessage struct {
	room   game.RoomID
	event  *events.GameEvent
	target string // optional connection ID: deliver to this member only
}

// NewConnectionManager creates a manager that forwards decoded commands to
// sink.
func NewConnectionManager(config ConnectionConfig, sink Sink) *ConnectionManager {
	return &ConnectionManager{
		rooms: make(map[game.RoomID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		sink:        sink,
		broadcastCh: make(chan broadcastMessage, 1024),
	}
}

// Start drains the broadcast channel until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case msg := <-cm.broadcastCh:
			cm.deliver(msg)
		}
	}
}

// UpgradeConnection upgrades an HTTP request to a websocket, registers the
// connection in its room, and synthesizes the join-room command.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, room game.RoomID, join events.JoinPayload) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade connection: %w", err)
	}

	c := &Connection{
		ID:          uuid.New().String(),
		Room:        room,
		Role:        join.Role,
		Team:        join.Team,
		Player:      join.Player,
		conn:        conn,
		send:        make(chan []byte, 256),
		done:        make(chan struct{}),
		manager:     cm,
		ConnectedAt: time.Now(),
	}

	cm.register(c)

	go c.writePump()
	go c.readPump()

	log.Info().
		Str("connection_id", c.ID).
		Str("game_code", room.String()).
		Str("role", string(join.Role)).
		Msg("websocket connection established")

	cm.sink.HandleInbound(context.Background(), &events.Inbound{
		Type:   events.InboundJoinRoom,
		Code:   room,
		Origin: c.ID,
		Join:   &join,
	})
	return nil
}

func (cm *ConnectionManager) register(c *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.rooms[c.Room] == nil {
		cm.rooms[c.Room] = make(map[*Connection]bool)
	}
	cm.rooms[c.Room][c] = true

	log.Debug().
		Str("connection_id", c.ID).
		Str("game_code", c.Room.String()).
		Int("room_size", len(cm.rooms[c.Room])).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregister(c *Connection) {
	cm.mu.Lock()
	if conns, ok := cm.rooms[c.Room]; ok {
		if _, ok := conns[c]; ok {
			delete(conns, c)
			if len(conns) == 0 {
				delete(cm.rooms, c.Room)
			}
			cm.mu.Unlock()

			c.closeOnce.Do(func() { close(c.done) })

			log.Info().
				Str("connection_id", c.ID).
				Str("game_code", c.Room.String()).
				Msg("connection unregistered")

			cm.sink.HandleInbound(context.Background(), &events.Inbound{
				Type:   events.InboundLeaveRoom,
				Code:   c.Room,
				Origin: c.ID,
			})
			return
		}
	}
	cm.mu.Unlock()
}

// Broadcast queues an event for every current member of the room, including
// the originator.
func (cm *ConnectionManager) Broadcast(room game.RoomID, event *events.GameEvent) {
	select {
	case cm.broadcastCh <- broadcastMessage{room: room, event: event}:
	default:
		log.Warn().Str("game_code", room.String()).Msg("broadcast channel full, dropping event")
	}
}

// SendTo queues an event for a single room member, used for snapshot replay
// and caller-only rejections. Deliveries share the broadcast channel, so a
// snapshot can never overtake an earlier broadcast.
func (cm *ConnectionManager) SendTo(room game.RoomID, connectionID string, event *events.GameEvent) {
	select {
	case cm.broadcastCh <- broadcastMessage{room: room, event: event, target: connectionID}:
	default:
		log.Warn().
			Str("game_code", room.String()).
			Str("connection_id", connectionID).
			Msg("broadcast channel full, dropping targeted event")
	}
}

func (cm *ConnectionManager) deliver(msg broadcastMessage) {
	cm.mu.RLock()
	conns, ok := cm.rooms[msg.room]
	if !ok {
		cm.mu.RUnlock()
		return
	}
	targets := make([]*Connection, 0, len(conns))
	for c := range conns {
		if msg.target != "" && c.ID != msg.target {
			continue
		}
		targets = append(targets, c)
	}
	cm.mu.RUnlock()

	data, err := json.Marshal(msg.event)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(msg.event.Type)).Msg("marshal event for delivery")
		return
	}

	// The room snapshot above is taken under RLock and may be stale by the
	// time we get here; a concurrently unregistering member is handled by
	// its done channel, never by closing send.
	for _, c := range targets {
		select {
		case c.send <- data:
		case <-c.done:
		default:
			// Slow or dead consumer; cut it loose rather than stall the room.
			log.Warn().
				Str("connection_id", c.ID).
				Str("game_code", msg.room.String()).
				Msg("send buffer full, closing connection")
			cm.unregister(c)
			c.conn.Close()
		}
	}

	log.Debug().
		Str("event_type", string(msg.event.Type)).
		Str("game_code", msg.room.String()).
		Int("delivered", len(targets)).
		Msg("event delivered")
}

// RoomSize returns the current member count for a room.
func (cm *ConnectionManager) RoomSize(room game.RoomID) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.rooms[room])
}

// Stats summarizes active rooms and connections.
func (cm *ConnectionManager) Stats() (totalConnections, activeRooms int) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	for _, conns := range cm.rooms {
		totalConnections += len(conns)
	}
	return totalConnections, len(cm.rooms)
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("write to websocket failed")
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.manager.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.manager.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("unexpected websocket close")
			}
			break
		}
		c.handleClientMessage(message)
		c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	}
}

// handleClientMessage decodes one client frame and hands the typed command to
// the sink. This is the transport boundary: nothing past it sees raw JSON.
func (c *Connection) handleClientMessage(message []byte) {
	in, err := events.DecodeInbound(c.Room, c.ID, message)
	if err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", c.ID).
			Str("game_code", c.Room.String()).
			Msg("rejected malformed client frame")
		return
	}
	c.manager.sink.HandleInbound(context.Background(), in)
}
