package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bluehaven/rentals/internal/config"

	"github.com/stretchr/testify/assert"
)

// readAll answers 413 when the body hits the size cap.
var readAll = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if _, err := io.ReadAll(r.Body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
})

func TestNewServer(t *testing.T) {
	cfg := &config.Config{HttpServer: config.HttpServer{
		Port:              "8080",
		Timeout:           10 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       time.Minute,
		MaxHeaderBytes:    1 << 20,
		MaxBodyBytes:      16,
	}}

	s := NewServer(cfg, readAll)

	assert.Equal(t, ":8080", s.httpServer.Addr)
	assert.Equal(t, 2*time.Second, s.httpServer.ReadHeaderTimeout)
	assert.Equal(t, 1<<20, s.httpServer.MaxHeaderBytes)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"within the cap", strings.Repeat("a", 16), http.StatusOK},
		{"over the cap", strings.Repeat("a", 17), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestNewServer_ReadHeaderTimeoutFallback(t *testing.T) {
	s := NewServer(&config.Config{HttpServer: config.HttpServer{Timeout: 7 * time.Second}}, readAll)

	assert.Equal(t, 7*time.Second, s.httpServer.ReadHeaderTimeout)
}
