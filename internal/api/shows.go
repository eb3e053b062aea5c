package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/luminary-core/internal/audit"
	"github.com/nerrad567/luminary-core/internal/canvas"
	"github.com/nerrad567/luminary-core/internal/engine"
	"github.com/nerrad567/luminary-core/internal/sequence"
	"github.com/nerrad567/luminary-core/internal/show"
)

// ShowSummary is a catalogue entry.
type ShowSummary struct {
	show.Info
	Configurable bool `json:"configurable"`
}

// ShowDetail is a catalogue entry with its current settings.
type ShowDetail struct {
	ShowSummary
	Settings any               `json:"settings,omitempty"`
	Ordering sequence.Strategy `json:"ordering,omitempty"`
}

// LightRequest is one light in an apply request.
type LightRequest struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// ApplyRequest is the body of POST /shows/{id}/apply.
type ApplyRequest struct {
	Lights []LightRequest `json:"lights"`
}

func summarise(s show.Show) ShowSummary {
	_, configurable := s.(show.Configurable)
	return ShowSummary{Info: s.Describe(), Configurable: configurable}
}

func detail(s show.Show) ShowDetail {
	d := ShowDetail{ShowSummary: summarise(s)}
	if c, ok := s.(show.Configurable); ok {
		d.Settings = c.Settings()
	}
	if seq, ok := s.(show.Sequenced); ok {
		d.Ordering = seq.OrderingStrategy()
	}
	return d
}

// handleListShows returns the catalogue in registration order.
func (s *Server) handleListShows(w http.ResponseWriter, _ *http.Request) {
	reg := s.engine.Registry()
	infos := reg.List()

	shows := make([]ShowSummary, 0, len(infos))
	for _, info := range infos {
		sh, err := reg.Get(info.ID)
		if err != nil {
			continue
		}
		shows = append(shows, summarise(sh))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"shows": shows,
		"count": len(shows),
	})
}

func (s *Server) lookupShow(w http.ResponseWriter, r *http.Request) (show.Show, bool) {
	id := chi.URLParam(r, "id")
	sh, err := s.engine.Registry().Get(id)
	if err != nil {
		if errors.Is(err, show.ErrShowNotFound) {
			writeNotFound(w, "show not found")
			return nil, false
		}
		s.logger.Error("failed to get show", "id", id, "error", err)
		writeInternalError(w, "failed to get show")
		return nil, false
	}
	return sh, true
}

// handleGetShow returns one show with its current settings.
func (s *Server) handleGetShow(w http.ResponseWriter, r *http.Request) {
	sh, ok := s.lookupShow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, detail(sh))
}

// handleUpdateShowConfig merges the body into the show's settings. The
// change takes effect on the running session at its next tick.
func (s *Server) handleUpdateShowConfig(w http.ResponseWriter, r *http.Request) {
	sh, ok := s.lookupShow(w, r)
	if !ok {
		return
	}
	c, ok := sh.(show.Configurable)
	if !ok {
		writeBadRequest(w, "show has no settings")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "failed to read request body")
		return
	}
	if !json.Valid(body) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := c.UpdateSettings(body); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	s.logger.Info("show settings updated", "show_id", sh.Describe().ID, "by", subjectFrom(r.Context()))
	s.recordAudit(r.Context(), audit.Entry{
		Action:  audit.ActionConfigure,
		ShowID:  sh.Describe().ID,
		Details: map[string]any{"settings": c.Settings()},
	})
	writeJSON(w, http.StatusOK, detail(sh))
}

// handleApplyShow starts the show on the requested lights, superseding any
// running session.
func (s *Server) handleApplyShow(w http.ResponseWriter, r *http.Request) {
	sh, ok := s.lookupShow(w, r)
	if !ok {
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	lights := make([]canvas.Light, len(req.Lights))
	for i, l := range req.Lights {
		if l.ID == "" {
			writeValidationError(w, "light id is required")
			return
		}
		lights[i] = canvas.Light{ID: l.ID, Position: canvas.Point{X: l.X, Y: l.Y}}
	}

	sess, err := s.engine.ApplyShow(r.Context(), sh, lights)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNoLights), errors.Is(err, engine.ErrDuplicateLight):
			writeValidationError(w, err.Error())
		case r.Context().Err() != nil:
			writeError(w, http.StatusServiceUnavailable, ErrCodeTimeout, "timed out stopping the running show")
		default:
			s.logger.Error("failed to apply show", "show_id", sh.Describe().ID, "error", err)
			writeInternalError(w, "failed to apply show")
		}
		return
	}

	s.logger.Info("show applied",
		"show_id", sess.ShowID,
		"session_id", sess.ID,
		"lights", len(lights),
		"by", subjectFrom(r.Context()),
	)
	s.recordAudit(r.Context(), audit.Entry{
		Action:    audit.ActionApply,
		ShowID:    sess.ShowID,
		SessionID: sess.ID,
		Details:   map[string]any{"lights": len(lights)},
	})
	view := newSessionView(sess)
	s.broadcastSession("started", view)
	writeJSON(w, http.StatusAccepted, view)
}
