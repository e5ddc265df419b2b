package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/samber/oops"
)

// Service periodically requests a URL so hosting platforms that idle
// inactive instances keep the process alive
type Service struct {
	url      string
	interval time.Duration
	client   *http.Client
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a new keep-alive service. An empty url or non-positive
// interval disables it.
func New(url string, interval time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Enabled reports whether Start will ping anything
func (s *Service) Enabled() bool {
	return s.url != "" && s.interval > 0
}

// Start begins pinging until ctx is done or Stop is called
func (s *Service) Start(ctx context.Context) {
	if !s.Enabled() {
		slog.Info("Keep-alive disabled")
		return
	}

	s.wg.Add(1)
	go s.pingLoop(ctx)
}

// Stop stops pinging and waits for the loop to exit
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) pingLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.Ping(ctx); err != nil {
				slog.Warn("Keep-alive ping failed", "url", s.url, "error", err)
			}
		}
	}
}

// Ping performs a single request
func (s *Service) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return oops.With("url", s.url).Wrap(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return oops.With("url", s.url).Wrap(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return oops.With("url", s.url, "status", resp.StatusCode).Errorf("unexpected status %d", resp.StatusCode)
	}

	slog.Debug("Keep-alive ping", "url", s.url, "status", resp.StatusCode)
	return nil
}
