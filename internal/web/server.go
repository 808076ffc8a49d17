// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package web serves receiver state over HTTP and a WebSocket live feed.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Server exposes statistics and the latest decoded messages
type Server struct {
	stats    *ubx.Statistics
	feed     *Broadcaster
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

// NewServer creates a server over shared statistics and a broadcaster
func NewServer(stats *ubx.Statistics, feed *Broadcaster, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		stats: stats,
		feed:  feed,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handler builds the HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/messages", s.handleMessages)
		r.Get("/messages/{type}", s.handleMessage)
	})
	r.Get("/ws", s.handleWebSocket)

	return r
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.feed.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debug("http request")
	})
}

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Stats       ubx.StatsSnapshot `json:"stats"`
	Fix         *ubx.Record       `json:"fix,omitempty"`
	Types       []string          `json:"types"`
	Subscribers int               `json:"subscribers"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	latest := s.feed.LatestAll()
	types := make([]string, 0, len(latest))
	for typ := range latest {
		types = append(types, typ)
	}
	sort.Strings(types)

	resp := StatusResponse{
		Stats:       s.stats.Snapshot(),
		Types:       types,
		Subscribers: s.feed.Subscribers(),
	}
	if rec, ok := latest[ubx.TypeNavPVT]; ok {
		resp.Fix = rec
	} else if rec, ok := latest[ubx.TypeNavHPPosLLH]; ok {
		resp.Fix = rec
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.feed.LatestAll())
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	rec, ok := s.feed.Latest(typ)
	if !ok {
		writeError(w, http.StatusNotFound, "no "+typ+" message received")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	id, ch := s.feed.Subscribe(64)
	defer s.feed.Unsubscribe(id)

	log := s.log.WithField("remote", r.RemoteAddr)
	log.Info("websocket client connected")

	// Reader only drains control frames; a read error means the client left.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			log.Info("websocket client disconnected")
			return
		case rec, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(rec); err != nil {
				log.WithError(err).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
