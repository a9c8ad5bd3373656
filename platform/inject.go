package platform

import (
	"fmt"
	"log/slog"
)

// Sequence returns the press/release order for a modifier+key chord.
// The modifier is released last so it is never left held.
func Sequence(modifier, key KeyCode) []SyntheticEvent {
	return []SyntheticEvent{
		{Code: modifier, Direction: Down},
		{Code: key, Direction: Down},
		{Code: key, Direction: Up},
		{Code: modifier, Direction: Up},
	}
}

// Injector synthesizes copy/paste chords through a Backend
type Injector struct {
	backend Backend
}

// NewInjector creates an injector. A nil backend makes every valid key a
// successful no-op, which is the behavior on platforms without a backend.
func NewInjector(backend Backend) *Injector {
	return &Injector{backend: backend}
}

// Inject presses and releases modifier+key for the logical key
func (i *Injector) Inject(key LogicalKey) error {
	if key != KeyCopy && key != KeyPaste {
		return fmt.Errorf("%w: %d", ErrUnsupportedKey, int(key))
	}

	if i.backend == nil {
		slog.Debug("No input backend on this platform, skipping injection", "key", key.String())
		return nil
	}

	code, ok := i.backend.ResolveKeyCode(key)
	if !ok {
		return fmt.Errorf("%w: %s has no %s key code", ErrUnsupportedKey, key, i.backend.Name())
	}

	events := Sequence(i.backend.ModifierCode(), code)
	accepted, err := i.backend.Submit(events)
	if accepted > 0 && accepted < len(events) {
		i.releaseModifier()
	}
	if err != nil {
		return fmt.Errorf("%w: %s accepted %d of %d events: %v",
			ErrInjectionRejected, i.backend.Name(), accepted, len(events), err)
	}
	if accepted != len(events) {
		return fmt.Errorf("%w: %s accepted %d of %d events",
			ErrInjectionRejected, i.backend.Name(), accepted, len(events))
	}

	slog.Debug("Injected key chord", "key", key.String(), "backend", i.backend.Name())
	return nil
}

// releaseModifier lifts the modifier after a chord that stopped part way.
// Failures are only logged since the chord already failed.
func (i *Injector) releaseModifier() {
	release := []SyntheticEvent{{Code: i.backend.ModifierCode(), Direction: Up}}
	if n, err := i.backend.Submit(release); err != nil || n != len(release) {
		slog.Warn("Failed to release modifier", "backend", i.backend.Name(), "error", err)
	}
}

// SendCtrlKey injects the chord named by id ("C" or "V") and returns 1 on
// success and 0 on any failure.
func (i *Injector) SendCtrlKey(id string) int {
	key, ok := ParseLogicalKey(id)
	if !ok {
		slog.Warn("Unsupported key", "key", id)
		return 0
	}

	if err := i.Inject(key); err != nil {
		slog.Warn("Key injection failed", "key", id, "error", err)
		return 0
	}
	return 1
}
