package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"markestedt/autolib/automation"
	"markestedt/autolib/binding"
	"markestedt/autolib/config"
	"markestedt/autolib/platform"
	"markestedt/autolib/storage"
)

// Agent coordinates the injector, clipboard automation and invocation log
type Agent struct {
	cfg       *config.Config
	injector  *platform.Injector
	automator *automation.Automator
	db        *storage.DB // nil when storage is disabled

	// onInvocation is called after each recorded invocation
	onInvocation func(*storage.Invocation)
}

// NewAgent creates a new agent instance
func NewAgent(cfg *config.Config) (*Agent, error) {
	backend := platform.NewBackend(platform.Options{SettleDelay: cfg.SettleDelay()})
	if backend == nil {
		slog.Warn("No synthetic input backend for this platform, key injection is a no-op")
	}

	injector := platform.NewInjector(backend)

	automator := automation.NewAutomator(injector, platform.NewClipboard(), automation.Options{
		PollAttempts: cfg.Clipboard.PollAttempts,
		PollInterval: time.Duration(cfg.Clipboard.PollIntervalMs) * time.Millisecond,
		UpdateDelay:  time.Duration(cfg.Clipboard.UpdateDelayMs) * time.Millisecond,
		PasteDelay:   time.Duration(cfg.Clipboard.PasteDelayMs) * time.Millisecond,
		Restore:      cfg.Clipboard.Restore,
	})

	a := &Agent{
		cfg:       cfg,
		injector:  injector,
		automator: automator,
	}

	if cfg.Storage.Enabled {
		db, err := storage.Open(cfg.Dir())
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		a.db = db
	}

	return a, nil
}

// Close releases the invocation log
func (a *Agent) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Invoke calls send_ctrl_key through the binding layer and records the outcome.
// A request whose ctx is already done is dropped before any key is sent.
func (a *Agent) Invoke(ctx context.Context, source string, args ...any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	start := time.Now()

	result, err := binding.Call(a.injector, args...)
	if err != nil {
		slog.Warn("Rejected invocation", "source", source, "error", err)
		return 0, err
	}

	key, _ := args[0].(string)
	slog.Info("Sent key", "key", key, "source", source, "result", result)

	inv := &storage.Invocation{
		Key:       key,
		Source:    source,
		Result:    result,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if result != 1 {
		inv.ErrorMessage = a.failureReason(key)
	}
	a.record(inv)

	return result, nil
}

// failureReason recovers the error behind a 0 result for the log. The result
// itself does not distinguish the two causes.
func (a *Agent) failureReason(key string) string {
	if _, ok := platform.ParseLogicalKey(key); !ok {
		return platform.ErrUnsupportedKey.Error()
	}
	return platform.ErrInjectionRejected.Error()
}

// CopySelectedText copies the focused window's selection
func (a *Agent) CopySelectedText(ctx context.Context) (string, error) {
	start := time.Now()
	text, err := a.automator.CopySelectedText(ctx)
	a.recordAction("C", "copy", start, err)
	return text, err
}

// PasteText pastes text into the focused window
func (a *Agent) PasteText(ctx context.Context, text string) error {
	start := time.Now()
	err := a.automator.PasteText(ctx, text)
	a.recordAction("V", "paste", start, err)
	return err
}

func (a *Agent) recordAction(key, source string, start time.Time, err error) {
	inv := &storage.Invocation{
		Key:       key,
		Source:    source,
		Result:    1,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		slog.Warn("Clipboard action failed", "source", source, "error", err)
		inv.ErrorMessage = err.Error()
		// Nothing copied still means the chord went through
		if !errors.Is(err, automation.ErrClipboardUnchanged) {
			inv.Result = 0
		}
	}
	a.record(inv)
}

func (a *Agent) record(inv *storage.Invocation) {
	if inv.Timestamp.IsZero() {
		inv.Timestamp = time.Now().UTC()
	}
	if a.db != nil {
		if err := a.db.SaveInvocation(inv); err != nil {
			slog.Error("Failed to record invocation", "error", err)
		}
	}
	if a.onInvocation != nil {
		a.onInvocation(inv)
	}
}
