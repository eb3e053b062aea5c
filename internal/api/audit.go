package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nerrad567/luminary-core/internal/audit"
)

// recordAudit stores a control action. Failures are logged, never returned
// to the caller; the action itself already happened.
func (s *Server) recordAudit(ctx context.Context, e audit.Entry) {
	if s.audit == nil {
		return
	}
	e.Actor = subjectFrom(ctx)
	e.Source = audit.SourceAPI
	if err := s.audit.Record(context.WithoutCancel(ctx), &e); err != nil {
		s.logger.Warn("failed to record audit entry", "action", e.Action, "error", err)
	}
}

// handleListAudit returns control actions, newest first.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeJSON(w, http.StatusOK, audit.Page{Entries: []audit.Entry{}})
		return
	}

	q := r.URL.Query()
	f := audit.Filter{Action: q.Get("action"), ShowID: q.Get("show_id")}
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	page, err := s.audit.List(r.Context(), f)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}
	writeJSON(w, http.StatusOK, page)
}
