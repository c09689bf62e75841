package urlcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Check(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/moved":
			w.WriteHeader(http.StatusNotModified)
		case "/no-head":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New()
	tests := []struct {
		path      string
		reachable bool
	}{
		{"/ok", true},
		{"/moved", true},
		{"/no-head", true},
		{"/missing", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := c.Check(context.Background(), srv.URL+tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.reachable, res.Reachable())
		})
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, methods, "GET /no-head")
}

func TestChecker_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := New(WithTimeout(20*time.Millisecond)).Check(context.Background(), srv.URL)
	assert.Error(t, err)

	_, err = New().Check(context.Background(), "://bad")
	assert.Error(t, err)
}
