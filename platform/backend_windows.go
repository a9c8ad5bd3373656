//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32         = windows.NewLazySystemDLL("user32.dll")
	sendInput      = user32.NewProc("SendInput")
	mapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard  = 1
	keyeventfKeyup = 0x0002
	mapvkVkToVsc   = 0
	vkControl      = 0x11
	vkC            = 0x43
	vkV            = 0x56
)

var windowsKeyCodes = map[LogicalKey]KeyCode{
	KeyCopy:  vkC,
	KeyPaste: vkV,
}

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte // Padding to match C struct size
}

// windowsBackend submits chords through a single SendInput call
type windowsBackend struct{}

// NewBackend returns the SendInput backend. Options are ignored because the
// whole sequence is submitted atomically.
func NewBackend(opts Options) Backend {
	return &windowsBackend{}
}

func (b *windowsBackend) Name() string { return "sendinput" }

func (b *windowsBackend) ModifierCode() KeyCode { return vkControl }

func (b *windowsBackend) ResolveKeyCode(key LogicalKey) (KeyCode, bool) {
	code, ok := windowsKeyCodes[key]
	return code, ok
}

// Submit sends all events in one SendInput call, each carrying the scan code
// MapVirtualKeyW reports for its virtual key.
func (b *windowsBackend) Submit(events []SyntheticEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	inputs := make([]input, len(events))
	for i, e := range events {
		scan, _, _ := mapVirtualKeyW.Call(uintptr(e.Code), mapvkVkToVsc)

		var flags uint32
		if e.Direction == Up {
			flags = keyeventfKeyup
		}

		inputs[i] = input{
			inputType: inputKeyboard,
			ki: keyboardInput{
				wVk:     uint16(e.Code),
				wScan:   uint16(scan),
				dwFlags: flags,
			},
		}
	}

	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)

	if int(ret) != len(inputs) {
		return int(ret), fmt.Errorf("SendInput failed: %w", err)
	}

	return int(ret), nil
}
