package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthProbe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"ok", http.StatusOK, true},
		{"no content", http.StatusNoContent, true},
		{"unavailable", http.StatusServiceUnavailable, false},
		{"not found", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
				assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			probe := NewHealthProbe(srv.URL+"/health", time.Second, quietLogger())
			assert.Equal(t, tt.want, probe.Check(context.Background()))
		})
	}
}

func TestHealthProbeUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/health"
	srv.Close()

	probe := NewHealthProbe(url, time.Second, quietLogger())
	assert.False(t, probe.Check(context.Background()))
}

func TestHealthProbeTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	probe := NewHealthProbe(srv.URL+"/health", 50*time.Millisecond, quietLogger())
	assert.False(t, probe.Check(context.Background()))
}
