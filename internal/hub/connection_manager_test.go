package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dev-by-yash/FeudExe/internal/events"
	"github.com/dev-by-yash/FeudExe/internal/game"
)

// recordingSink collects every decoded command the hub forwards.
type recordingSink struct {
	mu       sync.Mutex
	commands []*events.Inbound
}

func (r *recordingSink) HandleInbound(_ context.Context, in *events.Inbound) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, in)
}

func (r *recordingSink) find(typ events.InboundType) *events.Inbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range r.commands {
		if in.Type == typ {
			return in
		}
	}
	return nil
}

func newTestHub(t *testing.T) (*ConnectionManager, *recordingSink, *httptest.Server) {
	t.Helper()
	sink := &recordingSink{}
	cm := NewConnectionManager(DefaultConnectionConfig(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	go cm.Start(ctx)

	mux := http.NewServeMux()
	NewHandler(cm).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return cm, sink, srv
}

func dialGame(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/game?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", query, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *events.GameEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev events.GameEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	return &ev
}

func waitForHub(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestUpgradeRequiresGameCode(t *testing.T) {
	_, _, srv := newTestHub(t)

	resp, err := http.Get(srv.URL + "/ws/game")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestUpgradeRejectsInvalidRole(t *testing.T) {
	_, _, srv := newTestHub(t)

	resp, err := http.Get(srv.URL + "/ws/game?code=ABC234&role=referee")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestUpgradeSynthesizesJoin(t *testing.T) {
	cm, sink, srv := newTestHub(t)

	dialGame(t, srv, "code=abc234&role=buzzer&team=A&player=amy")

	waitForHub(t, func() bool { return sink.find(events.InboundJoinRoom) != nil })
	join := sink.find(events.InboundJoinRoom)
	if join.Code != "ABC234" {
		t.Fatalf("join code %q, want normalized ABC234", join.Code)
	}
	if join.Join == nil || join.Join.Role != events.RoleBuzzer || join.Join.Team != game.TeamA || join.Join.Player != "amy" {
		t.Fatalf("join payload %+v", join.Join)
	}
	if join.Origin == "" {
		t.Fatal("join carries no connection ID")
	}
	if got := cm.RoomSize("ABC234"); got != 1 {
		t.Fatalf("room size %d, want 1", got)
	}
}

func TestBroadcastReachesAllRoomMembers(t *testing.T) {
	cm, _, srv := newTestHub(t)

	host := dialGame(t, srv, "code=ABC234&role=host")
	display := dialGame(t, srv, "code=ABC234&role=display")
	other := dialGame(t, srv, "code=ZZZ999&role=display")
	waitForHub(t, func() bool { return cm.RoomSize("ABC234") == 2 && cm.RoomSize("ZZZ999") == 1 })

	ev, err := events.NewEvent("ABC234", events.EventBuzzerReady, time.Now(), nil)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	cm.Broadcast("ABC234", ev)

	for _, conn := range []*websocket.Conn{host, display} {
		got := readEvent(t, conn)
		if got.Type != events.EventBuzzerReady || got.GameCode != "ABC234" {
			t.Fatalf("member received %s for %s", got.Type, got.GameCode)
		}
	}

	// The other room must stay silent.
	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatal("event leaked into another room")
	}
}

func TestSendToTargetsOneConnection(t *testing.T) {
	cm, sink, srv := newTestHub(t)

	target := dialGame(t, srv, "code=ABC234&role=buzzer&team=A&player=amy")
	bystander := dialGame(t, srv, "code=ABC234&role=display")
	waitForHub(t, func() bool { return cm.RoomSize("ABC234") == 2 })

	waitForHub(t, func() bool { return sink.find(events.InboundJoinRoom) != nil })
	var targetID string
	sink.mu.Lock()
	for _, in := range sink.commands {
		if in.Join != nil && in.Join.Player == "amy" {
			targetID = in.Origin
		}
	}
	sink.mu.Unlock()
	if targetID == "" {
		t.Fatal("target connection ID not observed")
	}

	ev, err := events.NewEvent("ABC234", events.EventSnapshot, time.Now(), nil)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	cm.SendTo("ABC234", targetID, ev)

	got := readEvent(t, target)
	if got.Type != events.EventSnapshot {
		t.Fatalf("target received %s", got.Type)
	}

	bystander.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := bystander.ReadMessage(); err == nil {
		t.Fatal("targeted event reached a bystander")
	}
}

func TestClientFramesReachSink(t *testing.T) {
	_, sink, srv := newTestHub(t)

	conn := dialGame(t, srv, "code=ABC234&role=host")
	frame := `{"type":"reveal-answer","data":{"index":1,"is_correct":true,"team":"A"}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitForHub(t, func() bool { return sink.find(events.InboundRevealAnswer) != nil })
	in := sink.find(events.InboundRevealAnswer)
	if in.Reveal == nil || in.Reveal.Index != 1 || !in.Reveal.IsCorrect || in.Reveal.Team != game.TeamA {
		t.Fatalf("decoded reveal %+v", in.Reveal)
	}
}

func TestDisconnectSynthesizesLeave(t *testing.T) {
	cm, sink, srv := newTestHub(t)

	conn := dialGame(t, srv, "code=ABC234&role=buzzer&team=B&player=ben")
	waitForHub(t, func() bool { return cm.RoomSize("ABC234") == 1 })

	conn.Close()
	waitForHub(t, func() bool { return sink.find(events.InboundLeaveRoom) != nil })
	waitForHub(t, func() bool { return cm.RoomSize("ABC234") == 0 })
}

func TestUnregisterLeavesSendOpen(t *testing.T) {
	sink := &recordingSink{}
	cm := NewConnectionManager(DefaultConnectionConfig(), sink)

	c := &Connection{
		ID:      "conn-1",
		Room:    "ABC234",
		send:    make(chan []byte, 4),
		done:    make(chan struct{}),
		manager: cm,
	}
	cm.register(c)
	cm.unregister(c)

	select {
	case <-c.done:
	default:
		t.Fatal("done not closed by unregister")
	}

	// The drain loop may still hold a stale reference to this connection;
	// its send channel has to stay writable.
	select {
	case c.send <- []byte("late delivery"):
	default:
		t.Fatal("send channel not writable after unregister")
	}

	// Idempotent: a second unregister (slow-consumer path racing the read
	// pump) must not double-close anything.
	cm.unregister(c)
}

func TestDeliverRacingUnregisterDoesNotPanic(t *testing.T) {
	sink := &recordingSink{}
	cm := NewConnectionManager(DefaultConnectionConfig(), sink)

	room := game.RoomID("ABC234")
	ev, err := events.NewEvent(room, events.EventBuzzerReady, time.Now(), nil)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}

	for i := 0; i < 2000; i++ {
		c := &Connection{
			ID:      "conn-racer",
			Room:    room,
			send:    make(chan []byte, 4),
			done:    make(chan struct{}),
			manager: cm,
		}
		cm.register(c)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			cm.deliver(broadcastMessage{room: room, event: ev})
		}()
		go func() {
			defer wg.Done()
			cm.unregister(c)
		}()
		wg.Wait()
	}
}

func TestBroadcastSurvivesMidStreamDisconnects(t *testing.T) {
	cm, _, srv := newTestHub(t)

	stable := dialGame(t, srv, "code=ABC234&role=host")
	waitForHub(t, func() bool { return cm.RoomSize("ABC234") == 1 })

	// Connections churn while the room is under continuous broadcast
	// pressure; the drain loop has to outlive every disconnect.
	for i := 0; i < 20; i++ {
		churn := dialGame(t, srv, "code=ABC234&role=display")
		waitForHub(t, func() bool { return cm.RoomSize("ABC234") == 2 })

		ev, err := events.NewEvent("ABC234", events.EventBuzzerReady, time.Now(), nil)
		if err != nil {
			t.Fatalf("NewEvent: %v", err)
		}
		for j := 0; j < 10; j++ {
			cm.Broadcast("ABC234", ev)
		}
		churn.Close()
		waitForHub(t, func() bool { return cm.RoomSize("ABC234") == 1 })
	}

	// The stable member still receives deliveries afterwards.
	final, err := events.NewEvent("ABC234", events.EventSnapshot, time.Now(), nil)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	cm.Broadcast("ABC234", final)
	for {
		got := readEvent(t, stable)
		if got.Type == events.EventSnapshot {
			break
		}
	}
}

func TestStatsEndpoint(t *testing.T) {
	cm, _, srv := newTestHub(t)

	dialGame(t, srv, "code=ABC234&role=display")
	waitForHub(t, func() bool { return cm.RoomSize("ABC234") == 1 })

	resp, err := http.Get(srv.URL + "/ws/stats")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var stats map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["total_connections"] != 1 || stats["active_rooms"] != 1 {
		t.Fatalf("stats %+v", stats)
	}
}
