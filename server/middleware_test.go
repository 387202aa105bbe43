package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCors_Preflight(t *testing.T) {
	r := newTestRouter(&stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "X-Custom", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestCors_OnRegularResponse(t *testing.T) {
	w := doGet(t, newTestRouter(&stubResolver{res: fileResolution("https://cdn.example.com/a")}), "/?url=x")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(&stubResolver{res: fileResolution("https://cdn.example.com/a")})

	w := doGet(t, r, "/?url=x")
	id := w.Header().Get(requestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "generated id should be a UUID, got %q", id)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?url=x", nil)
	req.Header.Set(requestIDHeader, "caller-id")
	r.ServeHTTP(w, req)
	assert.Equal(t, "caller-id", w.Header().Get(requestIDHeader))
}

func TestNoRoute(t *testing.T) {
	w := doGet(t, newTestRouter(&stubResolver{}), "/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"msg":"Not found"}`, w.Body.String())
}
