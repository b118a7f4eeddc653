package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"configgate/internal/auth"
	"configgate/internal/config"
)

const (
	testUser     = "test-user"
	testPassword = "test-password"
	testToken    = "test-access-token"
	testArtifact = "test-config-file-content VNOI ICPC"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	settings := config.NewSettings(auth.Credential{Username: testUser, Password: testPassword}, testToken, []byte(testArtifact))
	return NewServer(settings, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var formHeaders = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}

func assertEmpty(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status: got %d, want %d", rec.Code, status)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("body: want empty, got %q", rec.Body.String())
	}
}
