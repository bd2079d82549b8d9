package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	gate := NewIdentityGate(&fakeRegistrar{}, "User-Id", nil)
	h := LoggingMiddleware(logger)(gate.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		GetLogger(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/memos", bytes.NewBufferString(`{"title":"t"}`))
	req.Header.Set("User-Id", "h5_logged")
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := buf.String()
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, out, `"msg":"Request started"`)
	assert.Contains(t, out, `"msg":"Request completed"`)
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, `"identifier":"h5_logged"`)
	assert.Contains(t, out, `[SENSITIVE]`)
	assert.NotContains(t, out, "secret-token")
}

func TestFormatHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Cookie", "a=b")
	h.Set("User-Id", "h5_abc")

	got := formatHeaders(h)
	assert.Equal(t, "[SENSITIVE]", got["Cookie"])
	assert.Equal(t, "h5_abc", got["User-Id"])
}
