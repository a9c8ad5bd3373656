package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"markestedt/autolib/automation"
	"markestedt/autolib/binding"
	"markestedt/autolib/storage"
)

const (
	maxBodyBytes  = 4096
	maxPasteBytes = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleSendCtrlKey invokes send_ctrl_key with a JSON argument array body
func (s *Server) handleSendCtrlKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	args, err := binding.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.invoker.Invoke(r.Context(), "web", args...)
	if err != nil {
		if errors.Is(err, binding.ErrInvalidInvocation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Invocation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "invocation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"result": result})
}

// handleCopy copies the current selection and returns its text
func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	text, err := s.invoker.CopySelectedText(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, automation.ErrClipboardUnchanged) || errors.Is(err, automation.ErrKeyRejected) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// handlePaste pastes the given text into the focused window
func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPasteBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.invoker.PasteText(r.Context(), req.Text); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, automation.ErrKeyRejected) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleHistory handles GET and DELETE requests for invocation history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetHistory(w, r)
	case http.MethodDelete:
		s.handleDeleteHistory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetHistory returns paginated invocation history
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 1)
	offset := queryInt(r, "offset", 0, 0)

	invocations, err := s.db.GetInvocations(limit, offset)
	if err != nil {
		slog.Error("Failed to get invocations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get history")
		return
	}

	total, err := s.db.GetInvocationCount()
	if err != nil {
		slog.Error("Failed to get invocation count", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get history")
		return
	}

	if invocations == nil {
		invocations = []storage.Invocation{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"invocations": invocations,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// handleDeleteHistory deletes an invocation by ID (/api/history/{id})
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if id == "" || id == r.URL.Path {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}

	if err := s.db.DeleteInvocation(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("Failed to delete invocation", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete invocation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleStats returns per-key statistics for the last N days
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "storage disabled")
		return
	}

	days := queryInt(r, "days", 7, 1)

	stats, err := s.db.GetKeyStats(days)
	if err != nil {
		slog.Error("Failed to get key stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get statistics")
		return
	}
	if stats == nil {
		stats = []storage.KeyStats{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days": days,
		"keys": stats,
	})
}

// handleConfig returns the active configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := s.GetConfig()

	writeJSON(w, http.StatusOK, struct {
		LogLevel       string `json:"logLevel"`
		SettleDelayMs  int    `json:"settleDelayMs"`
		PollAttempts   int    `json:"pollAttempts"`
		PollIntervalMs int    `json:"pollIntervalMs"`
		Restore        bool   `json:"restoreClipboard"`
		WebPort        int    `json:"webPort"`
		StorageEnabled bool   `json:"storageEnabled"`
		TrayEnabled    bool   `json:"trayEnabled"`
	}{
		LogLevel:       cfg.LogLevel,
		SettleDelayMs:  cfg.Injection.SettleDelayMs,
		PollAttempts:   cfg.Clipboard.PollAttempts,
		PollIntervalMs: cfg.Clipboard.PollIntervalMs,
		Restore:        cfg.Clipboard.Restore,
		WebPort:        cfg.Web.Port,
		StorageEnabled: cfg.Storage.Enabled,
		TrayEnabled:    cfg.Tray.Enabled,
	})
}

// handleStatus returns the current host status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": s.getStatus()})
}

func queryInt(r *http.Request, name string, def, floor int) int {
	str := r.URL.Query().Get(name)
	if str == "" {
		return def
	}
	v, err := strconv.Atoi(str)
	if err != nil || v < floor {
		return def
	}
	return v
}
