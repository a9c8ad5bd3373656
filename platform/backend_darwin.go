//go:build darwin

package platform

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>

void *newEventSource() {
    return (void *)CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
}

void releaseEventSource(void *src) {
    if (src) {
        CFRelease((CGEventSourceRef)src);
    }
}

int postKey(void *src, CGKeyCode keyCode, bool down, CGEventFlags flags) {
    CGEventRef event = CGEventCreateKeyboardEvent((CGEventSourceRef)src, keyCode, down);
    if (!event) {
        return 0;
    }
    CGEventSetFlags(event, flags);
    CGEventPost(kCGHIDEventTap, event);
    CFRelease(event);
    return 1;
}
*/
import "C"

import (
	"fmt"
	"time"
)

const (
	kvkANSIC   = 0x08
	kvkANSIV   = 0x09
	kvkCommand = 0x37

	flagMaskCommand = 0x00100000 // kCGEventFlagMaskCommand
)

var darwinKeyCodes = map[LogicalKey]KeyCode{
	KeyCopy:  kvkANSIC,
	KeyPaste: kvkANSIV,
}

// darwinBackend posts CoreGraphics keyboard events one at a time
type darwinBackend struct {
	settle time.Duration
}

// NewBackend returns the CoreGraphics backend
func NewBackend(opts Options) Backend {
	return &darwinBackend{settle: opts.settleDelay()}
}

func (b *darwinBackend) Name() string { return "cgevent" }

func (b *darwinBackend) ModifierCode() KeyCode { return kvkCommand }

func (b *darwinBackend) ResolveKeyCode(key LogicalKey) (KeyCode, bool) {
	code, ok := darwinKeyCodes[key]
	return code, ok
}

// Submit posts each event through a fresh event source. Events posted while
// the modifier is down carry the Command flag, and the settle delay runs
// after each non-modifier key press so the focused application observes it.
func (b *darwinBackend) Submit(events []SyntheticEvent) (int, error) {
	src := C.newEventSource()
	if src == nil {
		return 0, fmt.Errorf("CGEventSourceCreate failed")
	}
	defer C.releaseEventSource(src)

	modifier := b.ModifierCode()
	modifierDown := false
	accepted := 0

	// Never leave Command held when a post fails mid-chord
	defer func() {
		if modifierDown {
			C.postKey(src, C.CGKeyCode(modifier), C.bool(false), 0)
		}
	}()

	for _, e := range events {
		down := e.Direction == Down
		if e.Code == modifier {
			modifierDown = down
		}

		var flags uint64
		if modifierDown {
			flags = flagMaskCommand
		}

		if C.postKey(src, C.CGKeyCode(e.Code), C.bool(down), C.CGEventFlags(flags)) == 0 {
			return accepted, fmt.Errorf("CGEventCreateKeyboardEvent failed for key %#x %s", uint16(e.Code), e.Direction)
		}
		accepted++

		if down && e.Code != modifier {
			time.Sleep(b.settle)
		}
	}

	return accepted, nil
}
