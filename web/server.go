package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"markestedt/autolib/binding"
	"markestedt/autolib/config"
	"markestedt/autolib/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins, the server only listens on localhost
	},
}

// Invoker performs key injection on behalf of a host surface
type Invoker interface {
	// Invoke runs send_ctrl_key with raw host arguments.
	Invoke(ctx context.Context, source string, args ...any) (int, error)
	CopySelectedText(ctx context.Context) (string, error)
	PasteText(ctx context.Context, text string) error
}

// Server represents the web server
type Server struct {
	invoker Invoker
	db      *storage.DB // nil when storage is disabled
	config  *config.Config
	port    int
	hub     *Hub
	mu      sync.RWMutex
	status  string
	http    *http.Server
}

// NewServer creates a new web server
func NewServer(invoker Invoker, db *storage.DB, cfg *config.Config, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		invoker: invoker,
		db:      db,
		config:  cfg,
		port:    port,
		hub:     hub,
		status:  "idle",
	}
}

// Handler returns the HTTP routes served by Start
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/send-ctrl-key", s.handleSendCtrlKey)
	mux.HandleFunc("/api/copy", s.handleCopy)
	mux.HandleFunc("/api/paste", s.handlePaste)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/", s.handleHistory)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return mux, nil
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Stop()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Web server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting web server", "port", s.port, "url", s.URL())

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// URL returns the address of the web UI
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// GetConfig returns the current configuration (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetStatus updates the reported status and broadcasts it
func (s *Server) SetStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: StatusMessage{Status: status},
	})
}

func (s *Server) getStatus() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// BroadcastInvocation broadcasts a recorded invocation to all connected clients
func (s *Server) BroadcastInvocation(inv *storage.Invocation) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeInvocation,
		Data: inv,
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := newClient(s.hub, conn, s.handleWebSocketRequest)

	select {
	case client.hub.register <- client:
	case <-client.hub.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// handleWebSocketRequest runs send_ctrl_key for a websocket client
func (s *Server) handleWebSocketRequest(req request) Message {
	args, err := binding.Decode(req.Args)
	if err != nil {
		return Message{Type: MessageTypeError, Data: ErrorMessage{Error: err.Error()}}
	}

	result, err := s.invoker.Invoke(context.Background(), "websocket", args...)
	if err != nil {
		return Message{Type: MessageTypeError, Data: ErrorMessage{Error: err.Error()}}
	}

	return Message{Type: MessageTypeResult, Data: ResultMessage{Result: result}}
}
