package api

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/nerrad567/luminary-core/internal/audit"
	"github.com/nerrad567/luminary-core/internal/infrastructure/database"
	_ "github.com/nerrad567/luminary-core/migrations"
)

func auditedServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "api.db"), WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	srv, _ := testServer(t, nil)
	srv.audit = audit.NewSQLiteRepository(db.DB)
	return srv, srv.buildRouter()
}

func TestAudit_RecordsControlActions(t *testing.T) {
	_, router := auditedServer(t)

	if w := doRequest(t, router, http.MethodPost, "/api/v1/shows/strobe/apply", twoLights); w.Code != http.StatusAccepted {
		t.Fatalf("apply status = %d", w.Code)
	}
	if w := doRequest(t, router, http.MethodPatch, "/api/v1/shows/solid-color/config", `{"color":{"hue":120}}`); w.Code != http.StatusOK {
		t.Fatalf("config status = %d (%s)", w.Code, w.Body.String())
	}
	if w := doRequest(t, router, http.MethodPost, "/api/v1/session/stop?all=true", ""); w.Code != http.StatusOK {
		t.Fatalf("stop status = %d", w.Code)
	}

	w := doRequest(t, router, http.MethodGet, "/api/v1/audit", "")
	if w.Code != http.StatusOK {
		t.Fatalf("audit status = %d", w.Code)
	}
	var page audit.Page
	decode(t, w, &page)

	if page.Total != 3 {
		t.Fatalf("Total = %d, want 3 (%+v)", page.Total, page.Entries)
	}
	wantActions := []string{audit.ActionStopAll, audit.ActionConfigure, audit.ActionApply}
	for i, want := range wantActions {
		e := page.Entries[i]
		if e.Action != want {
			t.Errorf("entry %d action = %q, want %q", i, e.Action, want)
		}
		if e.Actor != "anonymous" || e.Source != audit.SourceAPI {
			t.Errorf("entry %d actor/source = %q/%q", i, e.Actor, e.Source)
		}
	}
	if page.Entries[2].ShowID != "strobe" || page.Entries[2].SessionID == "" {
		t.Errorf("apply entry = %+v", page.Entries[2])
	}
	if page.Entries[0].SessionID != page.Entries[2].SessionID {
		t.Errorf("stop entry session = %q, want %q", page.Entries[0].SessionID, page.Entries[2].SessionID)
	}
}

func TestAudit_ListFilters(t *testing.T) {
	_, router := auditedServer(t)

	doRequest(t, router, http.MethodPost, "/api/v1/shows/strobe/apply", twoLights)
	doRequest(t, router, http.MethodPost, "/api/v1/shows/snake/apply", twoLights)

	w := doRequest(t, router, http.MethodGet, "/api/v1/audit?show_id=snake", "")
	var page audit.Page
	decode(t, w, &page)
	if page.Total != 1 || page.Entries[0].ShowID != "snake" {
		t.Errorf("filtered page = %+v", page)
	}

	for _, q := range []string{"limit=abc", "offset=-1"} {
		if w := doRequest(t, router, http.MethodGet, "/api/v1/audit?"+q, ""); w.Code != http.StatusBadRequest {
			t.Errorf("GET /audit?%s status = %d, want 400", q, w.Code)
		}
	}
}

func TestAudit_WithoutRepository(t *testing.T) {
	srv, _ := testServer(t, nil)

	w := doRequest(t, srv.buildRouter(), http.MethodGet, "/api/v1/audit", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var page audit.Page
	decode(t, w, &page)
	if page.Total != 0 || len(page.Entries) != 0 {
		t.Errorf("page = %+v, want empty", page)
	}
}
