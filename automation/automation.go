// Package automation builds clipboard-level copy and paste on top of the
// copy/paste key injector.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"markestedt/autolib/platform"
)

var (
	// ErrKeyRejected is returned when the injector reports failure.
	ErrKeyRejected = errors.New("key injection failed")
	// ErrClipboardUnchanged is returned when nothing was copied.
	ErrClipboardUnchanged = errors.New("clipboard unchanged after copy")
)

// Sender injects a copy or paste chord, returning 1 on success
type Sender interface {
	SendCtrlKey(key string) int
}

// Options controls clipboard timing
type Options struct {
	PollAttempts int
	PollInterval time.Duration
	UpdateDelay  time.Duration // between clipboard write and paste
	PasteDelay   time.Duration // between paste and clipboard restore
	Restore      bool
}

// Automator copies and pastes text through the clipboard
type Automator struct {
	sender    Sender
	clipboard platform.Clipboard
	opts      Options
}

// NewAutomator creates an automator
func NewAutomator(sender Sender, clipboard platform.Clipboard, opts Options) *Automator {
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = 1
	}
	return &Automator{
		sender:    sender,
		clipboard: clipboard,
		opts:      opts,
	}
}

// CopySelectedText sends Copy to the focused window and returns the text it
// placed on the clipboard.
func (a *Automator) CopySelectedText(ctx context.Context) (string, error) {
	original, saved := a.saveClipboard()

	// Clear so a copy of identical text is still detected
	if err := a.clipboard.Set(""); err != nil {
		return "", fmt.Errorf("failed to clear clipboard: %w", err)
	}
	defer a.restoreClipboard(original, saved)

	if a.sender.SendCtrlKey(platform.KeyCopy.String()) != 1 {
		return "", fmt.Errorf("%w: copy", ErrKeyRejected)
	}

	for attempt := 0; attempt < a.opts.PollAttempts; attempt++ {
		text, err := a.clipboard.Get()
		if err != nil {
			slog.Debug("Clipboard read failed while polling", "attempt", attempt, "error", err)
		} else if text != "" {
			return text, nil
		}

		if err := sleep(ctx, a.opts.PollInterval); err != nil {
			return "", err
		}
	}

	return "", ErrClipboardUnchanged
}

// PasteText places text on the clipboard and sends Paste to the focused window
func (a *Automator) PasteText(ctx context.Context, text string) error {
	original, saved := a.saveClipboard()

	// Set clipboard to the text to paste
	if err := a.clipboard.Set(text); err != nil {
		return fmt.Errorf("failed to set clipboard: %w", err)
	}
	defer a.restoreClipboard(original, saved)

	// Wait for clipboard to update
	if err := sleep(ctx, a.opts.UpdateDelay); err != nil {
		return err
	}

	if a.sender.SendCtrlKey(platform.KeyPaste.String()) != 1 {
		return fmt.Errorf("%w: paste", ErrKeyRejected)
	}

	// Wait for paste to complete
	return sleep(ctx, a.opts.PasteDelay)
}

// saveClipboard reports false when restoring is disabled or the read failed.
// An empty clipboard is a valid saved state.
func (a *Automator) saveClipboard() (string, bool) {
	if !a.opts.Restore {
		return "", false
	}
	text, err := a.clipboard.Get()
	if err != nil {
		slog.Warn("Failed to get clipboard content, continuing anyway", "error", err)
		return "", false
	}
	return text, true
}

func (a *Automator) restoreClipboard(original string, saved bool) {
	if !saved {
		return
	}
	if err := a.clipboard.Set(original); err != nil {
		slog.Warn("Failed to restore clipboard", "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
