package observe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewRegistry returns a fresh registry holding c. Each call is independent so
// tests and repeated runs do not collide on registration.
func NewRegistry(c *Collector) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(c); err != nil {
		return nil, fmt.Errorf("register compositor collector: %w", err)
	}
	return registry, nil
}

// Handler serves /metrics for c and a /healthz liveness probe.
func Handler(c *Collector) (http.Handler, error) {
	registry, err := NewRegistry(c)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusOK)
		data, _ := json.Marshal(map[string]string{"status": "ok"})
		_, _ = rw.Write(data)
	}))
	return mux, nil
}

// Server exposes Handler over HTTP.
type Server struct {
	server   *http.Server
	listener net.Listener
}

// NewServer starts serving c at addr.
func NewServer(ctx context.Context, addr string, c *Collector) (*Server, error) {
	handler, err := Handler(c)
	if err != nil {
		return nil, err
	}
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: handler}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logrus.Warnf("metrics server stopped: %v", serveErr)
		}
	}()
	return &Server{server: srv, listener: listener}, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close shuts the server down.
func (s *Server) Close(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}

// WriteTextfile writes the current snapshot in the node-exporter textfile
// format.
func WriteTextfile(path string, c *Collector) error {
	registry, err := NewRegistry(c)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
