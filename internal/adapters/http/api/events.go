package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"kudos/internal/app"
	"kudos/internal/domain/model"
)

// eventRequest mirrors the envelope the chat gateway posts.
type eventRequest struct {
	EventID string `json:"event_id"`
	Kind    string `json:"kind"`
	Channel string `json:"channel"`
	Actor   string `json:"actor"`
	Text    string `json:"text"`
	TS      string `json:"ts"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// handlePostEvent accepts one event envelope and queues it.
func (s *Server) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err)
		return
	}

	err := s.deps.Enqueue(r.Context(), model.Event{
		EventID: req.EventID,
		Kind:    model.Kind(req.Kind),
		Channel: req.Channel,
		Actor:   req.Actor,
		Text:    req.Text,
		TS:      req.TS,
	})
	switch {
	case errors.Is(err, app.ErrMalformedEvent):
		writeError(w, http.StatusBadRequest, "malformed_event", err)
	case errors.Is(err, app.ErrBackpressure):
		writeError(w, http.StatusServiceUnavailable, "queue_full", err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "queued"})
	}
}

// handleLeaderboard serves GET /leaderboard?limit=N.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_limit", errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	if limit > s.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", errors.New("limit exceeds maximum"))
		return
	}

	entries, err := s.deps.TopN(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// scoreResponse is the read shape for a single item.
type scoreResponse struct {
	Item  string `json:"item"`
	Total int64  `json:"total"`
	Temp  int64  `json:"temp"`
}

// handleScore serves GET /score/{item}. A never-scored item reads as zeros.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	item := mux.Vars(r)["item"]
	sc, err := s.deps.Score(r.Context(), item)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Item: item, Total: sc.Total, Temp: sc.Temp})
}
