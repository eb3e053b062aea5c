package panel

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandler_Embedded(t *testing.T) {
	h := Handler("")

	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{name: "root", path: "/", contains: "<!DOCTYPE html>"},
		{name: "script", path: "/preview.js", contains: "light.preview"},
		{name: "fallback", path: "/some/deep/route", contains: "<!DOCTYPE html>"},
		{name: "single segment fallback", path: "/nonexistent", contains: "Luminary preview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.path)
			if w.Code != http.StatusOK {
				t.Fatalf("GET %s: status %d, want 200", tt.path, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("GET %s: body missing %q", tt.path, tt.contains)
			}
			if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
				t.Errorf("Cache-Control = %q", cc)
			}
		})
	}
}

func TestHandler_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(`<!DOCTYPE html><p>local page</p>`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "extra.js"), []byte("var x = 1;"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := Handler(dir)

	if w := get(t, h, "/"); !strings.Contains(w.Body.String(), "local page") {
		t.Errorf("GET /: body = %q, want directory index", w.Body.String())
	}
	if w := get(t, h, "/extra.js"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "var x") {
		t.Errorf("GET /extra.js: status %d body %q", w.Code, w.Body.String())
	}
	if w := get(t, h, "/deep/route"); !strings.Contains(w.Body.String(), "local page") {
		t.Error("directory fallback did not serve index.html")
	}
}

func TestHandler_MissingDirectoryUsesEmbedded(t *testing.T) {
	h := Handler(filepath.Join(t.TempDir(), "absent"))

	if w := get(t, h, "/"); !strings.Contains(w.Body.String(), "Luminary preview") {
		t.Error("missing directory did not fall back to embedded page")
	}
}
