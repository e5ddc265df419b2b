package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	assert.False(t, New("", time.Minute).Enabled())
	assert.False(t, New("http://localhost", 0).Enabled())
	assert.True(t, New("http://localhost", time.Minute).Enabled())
}

func TestPing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	require.NoError(t, New(ts.URL, time.Minute).Ping(context.Background()))
	assert.Error(t, New(ts.URL+"/down", time.Minute).Ping(context.Background()))
}

func TestStartPingsUntilStopped(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	s := New(ts.URL, 10*time.Millisecond)
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return hits.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := hits.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, hits.Load())
}

func TestStartDisabledIsNoop(t *testing.T) {
	s := New("", time.Minute)
	s.Start(context.Background())
	s.Stop()
}
