package api

import "net/http"

type healthResponse struct {
	Status   string `json:"status"`
	Items    int    `json:"items"`
	QueueLen int    `json:"queue_len"`
}

// handleHealth reports liveness plus a couple of cheap gauges.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Items:    s.deps.Count(r.Context()),
		QueueLen: s.deps.QueueLen(r.Context()),
	})
}
