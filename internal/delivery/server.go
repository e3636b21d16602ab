package delivery

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/dayreflect/internal/constants"
	"github.com/julianstephens/dayreflect/internal/lockfile"
	"github.com/julianstephens/dayreflect/internal/logger"
)

const maxMessageBytes = 64 << 10

// LockfilePath returns where the delivery daemon advertises itself.
func LockfilePath(configDir string) string {
	return filepath.Join(configDir, constants.DeliveryLockfileName)
}

// Status is returned by GET on the messages endpoint.
type Status struct {
	Pending []string `json:"pending"`
	Visible []Shown  `json:"visible"`
}

// Server accepts messages for an Engine over loopback HTTP.
type Server struct {
	engine   *Engine
	secret   string
	lockPath string
	listener net.Listener
	srv      *http.Server
}

func NewServer(engine *Engine, lockPath string) (*Server, error) {
	secret, err := lockfile.NewSecret()
	if err != nil {
		return nil, fmt.Errorf("generating secret: %w", err)
	}
	s := &Server{engine: engine, secret: secret, lockPath: lockPath}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(constants.DeliveryMessagesPath, s.handleMessages)
	return mux
}

func (s *Server) authorized(r *http.Request) bool {
	got := r.Header.Get(constants.DeliverySecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) == 1
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Status{Pending: s.engine.Pending(), Visible: s.engine.Visible()})
	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if err := s.engine.HandleMessage(r.Context(), body); err != nil {
			logger.Warn("Rejected message", "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, ErrUnknownMessage) || errors.Is(err, ErrMalformedMessage) || errors.Is(err, errMissingTitle) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Listen binds a loopback port and writes the lockfile.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listening: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := lockfile.Write(s.lockPath, lockfile.Lock{Port: port, PID: os.Getpid(), Secret: s.secret}); err != nil {
		ln.Close()
		return err
	}
	s.listener = ln
	logger.Info("Delivery server listening", "port", port)
	return nil
}

// Serve handles requests until ctx is done, then removes the lockfile.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	defer func() {
		if err := os.Remove(s.lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove lockfile", "path", s.lockPath, "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(s.listener) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
