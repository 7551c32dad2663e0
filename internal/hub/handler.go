package hub

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dev-by-yash/FeudExe/internal/events"
	"github.com/dev-by-yash/FeudExe/internal/game"
)

// Handler upgrades client websockets into game rooms.
type Handler struct {
	connectionManager *ConnectionManager
}

// NewHandler wraps a connection manager with HTTP routes.
func NewHandler(cm *ConnectionManager) *Handler {
	return &Handler{connectionManager: cm}
}

// HandleGameConnection handles a websocket upgrade for one game room.
// Identity comes from query parameters: code (required), role, team, player.
func (h *Handler) HandleGameConnection(w http.ResponseWriter, r *http.Request) {
	code := game.NewRoomID(r.URL.Query().Get("code"))
	if code.IsZero() {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	role := events.ClientRole(r.URL.Query().Get("role"))
	switch role {
	case events.RoleHost, events.RoleBuzzer, events.RoleDisplay:
	case "":
		role = events.RoleDisplay
	default:
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	join := events.JoinPayload{
		Role:   role,
		Team:   game.TeamID(r.URL.Query().Get("team")),
		Player: r.URL.Query().Get("player"),
	}
	if join.Team != game.TeamNone && !join.Team.Valid() {
		http.Error(w, "invalid team", http.StatusBadRequest)
		return
	}

	if err := h.connectionManager.UpgradeConnection(w, r, code, join); err != nil {
		log.Error().Err(err).Str("game_code", code.String()).Msg("websocket upgrade failed")
	}
}

// HandleStats reports active room and connection counts.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	conns, rooms := h.connectionManager.Stats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"total_connections": conns,
		"active_rooms":      rooms,
	})
}

// RegisterRoutes registers the websocket routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/game", h.HandleGameConnection)
	mux.HandleFunc("/ws/stats", h.HandleStats)
}
