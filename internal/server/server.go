package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kastheco/orchestra/config/auditlog"
	"github.com/kastheco/orchestra/log"
)

// maxBodyBytes bounds a posted envelope; worker stdout can be long.
const maxBodyBytes = 8 << 20

// Logger receives one line per received result.
type Logger interface {
	Printf(format string, args ...any)
}

// Server is the callback endpoint workers post their results to.
type Server struct {
	host    string
	port    int
	project string
	logger  Logger
	audit   auditlog.Logger

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	results  []Envelope
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets where result lines go. The default is log.InfoLog.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAudit records every received result in the audit log.
func WithAudit(project string, a auditlog.Logger) Option {
	return func(s *Server) {
		if a != nil {
			s.project = project
			s.audit = a
		}
	}
}

func New(host string, port int, opts ...Option) *Server {
	s := &Server{
		host:   host,
		port:   port,
		logger: log.InfoLog,
		audit:  auditlog.NopLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(HealthPath, s.handleHealth)
	mux.HandleFunc(ResultsPath, s.handleResults)
	return mux
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("server already started")
	}
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	srv := s.server
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorLog.Printf("callback server stopped: %v", err)
		}
	}()
	log.InfoLog.Printf("server protocol=%s callback_url=%s", Protocol, NormalizeURL("http://"+listener.Addr().String()))
	return nil
}

// Serve starts the server and blocks until ctx is done, then shuts down.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server, s.listener = nil, nil
	return err
}

// BaseURL is the scheme and bound address of the running server, or the
// configured address before Start.
func (s *Server) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return "http://" + net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// Results returns a copy of every envelope received so far.
func (s *Server) Results() []Envelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Envelope(nil), s.results...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "payload exceeds limit", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "unable to read body", http.StatusBadRequest)
		return
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.results = append(s.results, env)
	s.mu.Unlock()

	s.logger.Printf("%s", env.LogLine())
	level := "info"
	if env.Result.ExitCode != 0 {
		level = "error"
	}
	s.audit.Emit(auditlog.NewEvent(auditlog.EventResultReceived, s.project, env.Result.CommandMessage,
		auditlog.WithWorker(env.Result.WorkerID),
		auditlog.WithDetail(fmt.Sprintf(`{"exit_code":%d}`, env.Result.ExitCode)),
		auditlog.WithLevel(level)))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "accepted")
}
