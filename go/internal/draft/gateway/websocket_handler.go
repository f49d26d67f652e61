package gateway

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// handleWebSocket upgrades to a websocket that receives the current state
// immediately and then every change.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.connections.UpgradeConnection(w, r, stateMessage(s.engine.State())); err != nil {
		// the upgrader has already written the HTTP error
		log.Error().Err(err).Str("remote_addr", r.RemoteAddr).Msg("failed to upgrade WebSocket connection")
	}
}
