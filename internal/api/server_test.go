package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/luminary-core/internal/color"
	"github.com/nerrad567/luminary-core/internal/engine"
	"github.com/nerrad567/luminary-core/internal/infrastructure/config"
	"github.com/nerrad567/luminary-core/internal/infrastructure/logging"
	"github.com/nerrad567/luminary-core/internal/show"
	"github.com/nerrad567/luminary-core/internal/writequeue"
)

// recordingController counts colours that reach the controller.
type recordingController struct {
	mu     sync.Mutex
	writes map[string]color.HSB
}

func (c *recordingController) SetColor(_ context.Context, lightID string, hsb color.HSB) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writes == nil {
		c.writes = make(map[string]color.HSB)
	}
	c.writes[lightID] = hsb
	return nil
}

type fakeCheck struct{ err error }

func (f fakeCheck) HealthCheck(context.Context) error { return f.err }

// testServer creates a Server over a real engine and write coordinator.
func testServer(t *testing.T, checks map[string]HealthChecker) (*Server, *engine.Engine) {
	t.Helper()

	log := logging.Discard()
	coord := writequeue.New(&recordingController{}, writequeue.Config{
		Debounce:     time.Millisecond,
		WriteTimeout: time.Second,
	})
	eng := engine.New(show.NewDefaultRegistry(nil), coord, nil, log)

	srv, err := New(Deps{
		Config: config.APIConfig{Host: "127.0.0.1"},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:  log,
		Engine:  eng,
		Checks:  checks,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv.hub = NewHub(srv.wsCfg, log)
	go srv.hub.Run(ctx)

	t.Cleanup(func() {
		//nolint:errcheck // Best-effort teardown
		eng.StopAll(context.Background())
		cancel()
		//nolint:errcheck // Best-effort teardown
		coord.Close(context.Background())
	})
	return srv, eng
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}

const twoLights = `{"lights":[{"id":"a","x":0,"y":0},{"id":"b","x":1,"y":0}]}`

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() without logger should fail")
	}
	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("New() without engine should fail")
	}
}

// ─── Health ────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	srv, _ := testServer(t, map[string]HealthChecker{"mqtt": fakeCheck{}})

	w := doRequest(t, srv.buildRouter(), http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Status  string            `json:"status"`
		Version string            `json:"version"`
		Checks  map[string]string `json:"checks"`
	}
	decode(t, w, &resp)
	if resp.Status != "ok" || resp.Version != "test" || resp.Checks["mqtt"] != "ok" {
		t.Errorf("health = %+v", resp)
	}
}

func TestHealth_Degraded(t *testing.T) {
	srv, _ := testServer(t, map[string]HealthChecker{
		"mqtt":     fakeCheck{},
		"influxdb": fakeCheck{err: errors.New("unreachable")},
	})

	w := doRequest(t, srv.buildRouter(), http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, w, &resp)
	if resp.Status != "degraded" || resp.Checks["influxdb"] != "unreachable" {
		t.Errorf("health = %+v", resp)
	}
}

// ─── Shows ─────────────────────────────────────────────────────────

func TestListShows(t *testing.T) {
	srv, eng := testServer(t, nil)

	w := doRequest(t, srv.buildRouter(), http.MethodGet, "/api/v1/shows", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Shows []ShowSummary `json:"shows"`
		Count int           `json:"count"`
	}
	decode(t, w, &resp)
	if resp.Count != eng.Registry().Len() || len(resp.Shows) != resp.Count {
		t.Fatalf("count = %d, shows = %d, want %d", resp.Count, len(resp.Shows), eng.Registry().Len())
	}
	if resp.Shows[0].ID != "solid-color" || !resp.Shows[0].Configurable {
		t.Errorf("first show = %+v", resp.Shows[0])
	}
}

func TestGetShow(t *testing.T) {
	srv, _ := testServer(t, nil)
	router := srv.buildRouter()

	w := doRequest(t, router, http.MethodGet, "/api/v1/shows/solid-color", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		ID       string `json:"id"`
		Settings struct {
			Color color.HSB `json:"color"`
		} `json:"settings"`
	}
	decode(t, w, &resp)
	if resp.ID != "solid-color" || resp.Settings.Color != color.White {
		t.Errorf("show = %+v", resp)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/shows/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown show status = %d, want 404", w.Code)
	}
}

func TestGetShow_Ordering(t *testing.T) {
	srv, _ := testServer(t, nil)

	w := doRequest(t, srv.buildRouter(), http.MethodGet, "/api/v1/shows/snake", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp ShowDetail
	decode(t, w, &resp)
	if resp.Ordering == "" {
		t.Error("sequenced show has no ordering")
	}
}

func TestUpdateShowConfig(t *testing.T) {
	srv, eng := testServer(t, nil)
	router := srv.buildRouter()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid", body: `{"color":{"hue":120}}`, wantStatus: http.StatusOK},
		{name: "out of range", body: `{"color":{"hue":400}}`, wantStatus: http.StatusBadRequest},
		{name: "not json", body: `{color`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPatch, "/api/v1/shows/solid-color/config", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	sh, err := eng.Registry().Get("solid-color")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got := sh.(*show.SolidColor).Config().Color
	want := color.HSB{Hue: 120, Saturation: 0, Brightness: 100}
	if got != want {
		t.Errorf("config color = %+v, want %+v", got, want)
	}
}

func TestUpdateShowConfig_UnknownShow(t *testing.T) {
	srv, _ := testServer(t, nil)
	w := doRequest(t, srv.buildRouter(), http.MethodPatch, "/api/v1/shows/nope/config", `{}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ─── Apply and sessions ────────────────────────────────────────────

func TestApplyShow(t *testing.T) {
	srv, eng := testServer(t, nil)

	w := doRequest(t, srv.buildRouter(), http.MethodPost, "/api/v1/shows/strobe/apply", twoLights)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (%s)", w.Code, w.Body.String())
	}

	var view SessionView
	decode(t, w, &view)
	if view.ShowID != "strobe" || len(view.Lights) != 2 || view.ID == "" {
		t.Errorf("session = %+v", view)
	}

	cur := eng.Current()
	if cur == nil || cur.ID != view.ID {
		t.Errorf("Current() = %v, want session %s", cur, view.ID)
	}
}

func TestApplyShow_Errors(t *testing.T) {
	srv, _ := testServer(t, nil)
	router := srv.buildRouter()

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{name: "unknown show", path: "/api/v1/shows/nope/apply", body: twoLights, wantStatus: http.StatusNotFound},
		{name: "invalid json", path: "/api/v1/shows/strobe/apply", body: `{lights`, wantStatus: http.StatusBadRequest},
		{name: "no lights", path: "/api/v1/shows/strobe/apply", body: `{"lights":[]}`, wantStatus: http.StatusBadRequest},
		{name: "missing id", path: "/api/v1/shows/strobe/apply", body: `{"lights":[{"x":1}]}`, wantStatus: http.StatusBadRequest},
		{
			name:       "duplicate light",
			path:       "/api/v1/shows/strobe/apply",
			body:       `{"lights":[{"id":"a"},{"id":"a"}]}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestCurrentSession(t *testing.T) {
	srv, _ := testServer(t, nil)
	router := srv.buildRouter()

	w := doRequest(t, router, http.MethodGet, "/api/v1/session", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"session":null`) {
		t.Errorf("idle session response = %d %s", w.Code, w.Body.String())
	}

	doRequest(t, router, http.MethodPost, "/api/v1/shows/strobe/apply", twoLights)

	w = doRequest(t, router, http.MethodGet, "/api/v1/session", "")
	var resp struct {
		Session *SessionView `json:"session"`
	}
	decode(t, w, &resp)
	if resp.Session == nil || resp.Session.ShowID != "strobe" || !resp.Session.Running {
		t.Errorf("session = %+v", resp.Session)
	}
}

func TestStopSession(t *testing.T) {
	srv, eng := testServer(t, nil)
	router := srv.buildRouter()

	doRequest(t, router, http.MethodPost, "/api/v1/shows/strobe/apply", twoLights)

	w := doRequest(t, router, http.MethodPost, "/api/v1/session/stop", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Stopped *SessionView `json:"stopped"`
	}
	decode(t, w, &resp)
	if resp.Stopped == nil || resp.Stopped.Running || resp.Stopped.EndReason != engine.ReasonStopped {
		t.Errorf("stopped = %+v", resp.Stopped)
	}
	if strings.Contains(w.Body.String(), "cancelled_writes") {
		t.Error("plain stop reported cancelled_writes")
	}
	if eng.Current() != nil {
		t.Error("Current() != nil after stop")
	}
}

func TestStopSession_All(t *testing.T) {
	srv, _ := testServer(t, nil)

	w := doRequest(t, srv.buildRouter(), http.MethodPost, "/api/v1/session/stop?all=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Stopped   *SessionView `json:"stopped"`
		Cancelled *int         `json:"cancelled_writes"`
	}
	decode(t, w, &resp)
	if resp.Stopped != nil {
		t.Errorf("stopped = %+v, want null with nothing running", resp.Stopped)
	}
	if resp.Cancelled == nil {
		t.Error("cancelled_writes missing for ?all=true")
	}
}

func TestListSessions(t *testing.T) {
	srv, _ := testServer(t, nil)
	router := srv.buildRouter()

	w := doRequest(t, router, http.MethodGet, "/api/v1/sessions?limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Sessions []engine.SessionRecord `json:"sessions"`
		Count    int                    `json:"count"`
	}
	decode(t, w, &resp)
	if resp.Sessions == nil || resp.Count != 0 {
		t.Errorf("sessions = %+v", resp)
	}

	for _, q := range []string{"limit=0", "limit=abc"} {
		w = doRequest(t, router, http.MethodGet, "/api/v1/sessions?"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", q, w.Code)
		}
	}
}

// ─── Middleware ────────────────────────────────────────────────────

func TestRequestID(t *testing.T) {
	srv, _ := testServer(t, nil)
	router := srv.buildRouter()

	w := doRequest(t, router, http.MethodGet, "/api/v1/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("no generated X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := doRequest(t, h, http.MethodGet, "/", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestCORS(t *testing.T) {
	srv, _ := testServer(t, nil)
	srv.cfg.CORS.AllowedOrigins = []string{"http://panel.local"}
	router := srv.buildRouter()

	tests := []struct {
		origin    string
		wantAllow string
	}{
		{origin: "http://panel.local", wantAllow: "http://panel.local"},
		{origin: "http://evil.example", wantAllow: ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/shows", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want 204", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
			t.Errorf("origin %s: allow = %q, want %q", tt.origin, got, tt.wantAllow)
		}
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────

func dialPreview(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v (resp: %v)", err, resp)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) WSMessage {
	t.Helper()
	//nolint:errcheck // Deadline failure surfaces as a read error
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	return msg
}

func subscribe(t *testing.T, ws *websocket.Conn, channels ...string) {
	t.Helper()
	if err := ws.WriteJSON(WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "sub-1",
		Payload: WSSubscribePayload{Channels: channels},
	}); err != nil {
		t.Fatalf("write subscribe message: %v", err)
	}
	if resp := readMessage(t, ws); resp.Type != WSTypeResponse || resp.ID != "sub-1" {
		t.Fatalf("subscribe response = %+v", resp)
	}
}

func TestWebSocket_PreviewStream(t *testing.T) {
	srv, eng := testServer(t, nil)
	eng.SetPreview(srv.hub.PreviewFunc())
	ws := dialPreview(t, srv)
	subscribe(t, ws, ChannelPreview)

	w := doRequest(t, srv.buildRouter(), http.MethodPost, "/api/v1/shows/solid-color/apply",
		`{"lights":[{"id":"only"}]}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("apply status = %d", w.Code)
	}

	msg := readMessage(t, ws)
	if msg.Type != WSTypeEvent || msg.EventType != ChannelPreview {
		t.Fatalf("message = %+v, want preview event", msg)
	}
	raw, _ := json.Marshal(msg.Payload)
	var p PreviewPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.LightID != "only" || p.Color == nil || *p.Color != color.White {
		t.Errorf("preview = %+v", p)
	}
}

func TestWebSocket_SessionEvents(t *testing.T) {
	srv, _ := testServer(t, nil)
	ws := dialPreview(t, srv)
	subscribe(t, ws, ChannelSession)

	router := srv.buildRouter()
	doRequest(t, router, http.MethodPost, "/api/v1/shows/strobe/apply", twoLights)
	doRequest(t, router, http.MethodPost, "/api/v1/session/stop", "")

	for _, want := range []string{"started", "stopped"} {
		msg := readMessage(t, ws)
		if msg.EventType != ChannelSession {
			t.Fatalf("event type = %q, want %q", msg.EventType, ChannelSession)
		}
		payload, _ := msg.Payload.(map[string]any)
		if payload["event"] != want {
			t.Errorf("event = %v, want %s", payload["event"], want)
		}
	}
}

func TestWebSocket_PingAndUnknown(t *testing.T) {
	srv, _ := testServer(t, nil)
	ws := dialPreview(t, srv)

	if err := ws.WriteJSON(WSMessage{Type: WSTypePing, ID: "p1"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if msg := readMessage(t, ws); msg.Type != WSTypePong || msg.ID != "p1" {
		t.Errorf("ping reply = %+v", msg)
	}

	if err := ws.WriteJSON(WSMessage{Type: "shout", ID: "x"}); err != nil {
		t.Fatalf("write unknown: %v", err)
	}
	if msg := readMessage(t, ws); msg.Type != WSTypeError {
		t.Errorf("unknown type reply = %+v, want error", msg)
	}
}

func TestHub_BroadcastSkipsUnsubscribed(t *testing.T) {
	hub := NewHub(config.WebSocketConfig{}, logging.Discard())
	subscribed := &WSClient{hub: hub, send: make(chan []byte, 1), subscriptions: map[string]struct{}{ChannelPreview: {}}}
	other := &WSClient{hub: hub, send: make(chan []byte, 1), subscriptions: map[string]struct{}{}}
	hub.Register(subscribed)
	hub.Register(other)

	hub.PreviewFunc()("a", nil)

	if len(subscribed.send) != 1 {
		t.Error("subscribed client did not receive the event")
	}
	if len(other.send) != 0 {
		t.Error("unsubscribed client received the event")
	}

	hub.Unregister(subscribed)
	hub.Unregister(subscribed)
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}
}

func TestPanelRoutes(t *testing.T) {
	srv, _ := testServer(t, nil)
	router := srv.buildRouter()

	w := doRequest(t, router, http.MethodGet, "/panel", "")
	if w.Code != http.StatusMovedPermanently || w.Header().Get("Location") != "/panel/" {
		t.Errorf("GET /panel: status %d location %q", w.Code, w.Header().Get("Location"))
	}

	w = doRequest(t, router, http.MethodGet, "/panel/", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Errorf("GET /panel/: status %d", w.Code)
	}
}
