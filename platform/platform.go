package platform

import (
	"errors"
	"time"
)

var (
	// ErrUnsupportedKey is returned for identifiers other than "C" and "V".
	ErrUnsupportedKey = errors.New("unsupported key")
	// ErrInjectionRejected is returned when the OS did not accept every event.
	ErrInjectionRejected = errors.New("injection rejected")
)

// LogicalKey is an action independent of the keyboard layout
type LogicalKey int

const (
	KeyCopy LogicalKey = iota + 1
	KeyPaste
)

// ParseLogicalKey maps a host identifier to a logical key
func ParseLogicalKey(id string) (LogicalKey, bool) {
	switch id {
	case "C":
		return KeyCopy, true
	case "V":
		return KeyPaste, true
	default:
		return 0, false
	}
}

// String returns the host identifier for the key
func (k LogicalKey) String() string {
	switch k {
	case KeyCopy:
		return "C"
	case KeyPaste:
		return "V"
	default:
		return "?"
	}
}

// KeyCode is a platform-specific virtual key code
type KeyCode uint16

// Direction is the transition carried by a synthetic event
type Direction int

const (
	Down Direction = iota
	Up
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// SyntheticEvent describes one key transition
type SyntheticEvent struct {
	Code      KeyCode
	Direction Direction
}

// Backend is the OS half of key injection. Implementations hold no state
// between Submit calls.
type Backend interface {
	Name() string
	// ModifierCode is the key held for copy/paste (Ctrl or Command).
	ModifierCode() KeyCode
	ResolveKeyCode(key LogicalKey) (KeyCode, bool)
	// Submit posts the events in order and reports how many the OS accepted.
	Submit(events []SyntheticEvent) (int, error)
}

// Options tunes backend construction
type Options struct {
	// SettleDelay separates press and release on backends that post events
	// one at a time. Zero, negative or too-large values use DefaultSettleDelay.
	SettleDelay time.Duration
}

const (
	DefaultSettleDelay = 20 * time.Millisecond
	MaxSettleDelay     = 50 * time.Millisecond
)

func (o Options) settleDelay() time.Duration {
	if o.SettleDelay <= 0 || o.SettleDelay >= MaxSettleDelay {
		return DefaultSettleDelay
	}
	return o.SettleDelay
}

// Clipboard provides clipboard access
type Clipboard interface {
	Get() (string, error)
	Set(text string) error
}
