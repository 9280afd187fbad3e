// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mchmarny/sdmon/pkg/logging"
)

// Server is the ops HTTP server.
type Server struct {
	config     *Config
	httpServer *http.Server
	mu         sync.RWMutex
	ready      bool
}

// NewServer creates a new server instance for the given config.
func NewServer(config *Config) *Server {
	if config == nil {
		config = NewConfig(":9100")
	}

	s := &Server{config: config}

	s.httpServer = &http.Server{
		Addr:         config.Address,
		Handler:      s.setupRoutes(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
		ErrorLog:     logging.NewLogLogger(slog.LevelError),
	}

	return s
}

// setupRoutes configures all HTTP routes and middleware.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", s.withMiddleware(s.handleHealth))
	mux.HandleFunc("/ready", s.withMiddleware(s.handleReady))
	mux.HandleFunc("/version", s.withMiddleware(s.handleVersion))

	return mux
}

// SetReady marks the server as ready to serve traffic. The run loop
// flips this once the first collection cycle has completed.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start runs the HTTP server until the context is canceled, then shuts
// it down gracefully.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("starting ops server", "address", s.httpServer.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server, draining in-flight
// requests up to the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down ops server")
	return s.httpServer.Shutdown(shutdownCtx)
}
