package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/luminary-core/internal/audit"
	"github.com/nerrad567/luminary-core/internal/engine"
)

// SessionView is the API form of a session.
type SessionView struct {
	ID        string           `json:"id"`
	ShowID    string           `json:"show_id"`
	Lights    []string         `json:"lights"`
	StartedAt time.Time        `json:"started_at"`
	Running   bool             `json:"running"`
	EndReason engine.EndReason `json:"end_reason,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func newSessionView(sess *engine.Session) SessionView {
	lights := make([]string, len(sess.Targets))
	for i, l := range sess.Targets {
		lights[i] = l.ID
	}
	v := SessionView{
		ID:        sess.ID,
		ShowID:    sess.ShowID,
		Lights:    lights,
		StartedAt: sess.StartedAt,
		Running:   sess.Running(),
		EndReason: sess.EndReason(),
	}
	if err := sess.Err(); err != nil {
		v.Error = err.Error()
	}
	return v
}

// handleCurrentSession returns the running session or null.
func (s *Server) handleCurrentSession(w http.ResponseWriter, _ *http.Request) {
	var view *SessionView
	if sess := s.engine.Current(); sess != nil {
		v := newSessionView(sess)
		view = &v
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": view})
}

// handleStopSession stops the running show. With ?all=true it also drops
// every write still waiting in the coordinator.
func (s *Server) handleStopSession(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all")) //nolint:errcheck // Invalid values mean false

	var (
		sess      *engine.Session
		cancelled int
		err       error
	)
	if all {
		sess, cancelled, err = s.engine.StopAll(r.Context())
	} else {
		sess, err = s.engine.Stop(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeTimeout, "timed out waiting for the show to stop")
		return
	}

	var view *SessionView
	if sess != nil {
		v := newSessionView(sess)
		view = &v
		s.broadcastSession("stopped", v)
	}

	entry := audit.Entry{Action: audit.ActionStop}
	if all {
		entry.Action = audit.ActionStopAll
		entry.Details = map[string]any{"cancelled_writes": cancelled}
	}
	if sess != nil {
		entry.ShowID, entry.SessionID = sess.ShowID, sess.ID
	}
	s.recordAudit(r.Context(), entry)

	resp := map[string]any{"stopped": view}
	if all {
		resp["cancelled_writes"] = cancelled
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListSessions returns recent session history.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.engine.History(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list sessions", "error", err)
		writeInternalError(w, "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": records,
		"count":    len(records),
	})
}

func (s *Server) broadcastSession(event string, view SessionView) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(ChannelSession, map[string]any{
		"event":   event,
		"session": view,
	})
}
