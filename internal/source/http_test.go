package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/case-dashboard/internal/domain"
	"github.com/case-dashboard/internal/logging"
)

const exportCSV = "tipo_tx,diagnostico,estado_tx,medico_ref\n" +
	"Quimioterapia,Linfoma,En curso,dr.perez\n" +
	"Cirugía,Melanoma,Finalizado,dra.gomez\n"

func newTestHTTPSource(t *testing.T, url string, retries int, cache PayloadCache) *HTTPSource {
	t.Helper()
	src := NewHTTPSource(domain.SourceConfig{
		URL:        url,
		Timeout:    2 * time.Second,
		RetryCount: retries,
		RateLimit:  1000,
	}, newTestDecoder(t), cache, time.Minute, logging.Discard())
	src.client.RetryWaitMin = time.Millisecond
	src.client.RetryWaitMax = 5 * time.Millisecond
	return src
}

func TestHTTPSource_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/csv", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(exportCSV))
	}))
	defer server.Close()

	src := newTestHTTPSource(t, server.URL, 0, nil)
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "http:"+server.URL, src.Name())
}

func TestHTTPSource_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(exportCSV))
	}))
	defer server.Close()

	src := newTestHTTPSource(t, server.URL, 3, nil)
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPSource_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		retries int
	}{
		{"not found", http.StatusNotFound, "", 0},
		{"server error after retries", http.StatusInternalServerError, "", 1},
		{"malformed csv", http.StatusOK, "a,b\n1,2,3\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			src := newTestHTTPSource(t, server.URL, tt.retries, nil)
			_, err := src.Load(context.Background())
			require.Error(t, err)

			var unavailable *domain.DataUnavailableError
			require.True(t, errors.As(err, &unavailable))
			assert.Equal(t, src.Name(), unavailable.Source)
		})
	}
}

func TestHTTPSource_CircuitBreakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src := newTestHTTPSource(t, server.URL, 0, nil)
	for i := 0; i < 5; i++ {
		_, err := src.Load(context.Background())
		require.Error(t, err)
	}
	// Three consecutive failures trip the breaker; later loads never reach the server
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPSource_UsesCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(exportCSV))
	}))
	defer server.Close()

	cache, err := NewTieredCache(domain.CacheConfig{MemoryItems: 2}, nil, logging.Discard())
	require.NoError(t, err)

	src := newTestHTTPSource(t, server.URL, 0, cache)
	for i := 0; i < 3; i++ {
		ds, err := src.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, ds.Len())
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPSource_ContextCanceled(t *testing.T) {
	src := newTestHTTPSource(t, "http://127.0.0.1:1/export", 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Load(ctx)
	assert.Error(t, err)
}
