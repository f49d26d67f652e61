package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mcdev12/snakedraft/go/internal/draft/engine"
	"github.com/mcdev12/snakedraft/go/internal/draft/pick"
	"github.com/mcdev12/snakedraft/go/internal/draft/store"
	"github.com/mcdev12/snakedraft/go/internal/draft/validation"
	"github.com/mcdev12/snakedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type makePickRequest struct {
	PlayerID string `json:"player_id"`
}

type setQueueRequest struct {
	PlayerIDs []string `json:"player_ids"`
}

var errBadRequest = errors.New("bad request")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Error().Err(err).Msg("failed to write health check response")
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State())
}

// handlePlayers lists the undrafted pool, optionally filtered by ?position=
// and capped by ?limit=.
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players := s.engine.AvailablePlayers()

	if raw := r.URL.Query().Get("position"); raw != "" {
		pos, err := models.ParsePosition(raw)
		if err != nil {
			writeError(w, errors.Join(errBadRequest, err))
			return
		}
		filtered := players[:0]
		for _, p := range players {
			if p.Position == pos {
				filtered = append(filtered, p)
			}
		}
		players = filtered
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, errors.Join(errBadRequest, errors.New("limit must be a non-negative integer")))
			return
		}
		players = players[:min(n, len(players))]
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleMakePick(w http.ResponseWriter, r *http.Request) {
	var req makePickRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	saved, err := s.engine.MakePick(r.Context(), req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleForcePick(w http.ResponseWriter, r *http.Request) {
	saved, err := s.engine.ForcePick(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleTransition(fn func(Engine, context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(s.engine, r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.engine.State())
	}
}

func (s *Server) handleGetAutodraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State().Autodraft)
}

func (s *Server) handleSaveAutodraft(w http.ResponseWriter, r *http.Request) {
	var update models.AutodraftConfigUpdate
	if err := decode(r, &update); err != nil {
		writeError(w, err)
		return
	}
	for pos := range update.PositionLimits {
		if !pos.Valid() {
			writeError(w, errors.Join(errBadRequest, errors.New("unknown position "+string(pos))))
			return
		}
	}
	cfg, err := s.engine.SaveAutodraftConfig(r.Context(), update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSetQueue(w http.ResponseWriter, r *http.Request) {
	var req setQueueRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	cfg, err := s.engine.SetQueue(r.Context(), req.PlayerIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.State())
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

// statusFor maps engine, executor and store errors onto HTTP
func statusFor(err error) (int, string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, string(verr.Code)
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, engine.ErrNoLegalPick):
		return http.StatusUnprocessableEntity, "NO_LEGAL_PICK"
	case errors.Is(err, pick.ErrPickInProgress):
		return http.StatusConflict, "PICK_IN_PROGRESS"
	case errors.Is(err, engine.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, engine.ErrDraftComplete):
		return http.StatusConflict, "DRAFT_COMPLETE"
	case errors.Is(err, store.ErrPlayerTaken):
		return http.StatusConflict, "PLAYER_TAKEN"
	case errors.Is(err, store.ErrPickConflict):
		return http.StatusConflict, "PICK_CONFLICT"
	case errors.Is(err, engine.ErrNotLoaded):
		return http.StatusServiceUnavailable, "NOT_LOADED"
	}
	return http.StatusServiceUnavailable, "UNAVAILABLE"
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	var verr *validation.Error
	if errors.As(err, &verr) {
		msg = verr.Message
	}
	if status == http.StatusServiceUnavailable {
		log.Error().Err(err).Msg("draft request failed")
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
