// Package binding exposes the key injector through a host calling
// convention: one string argument in, an integer result out.
package binding

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// MaxKeyLength bounds the identifier accepted from a host
const MaxKeyLength = 8

// ErrInvalidInvocation is a host-level call error. It is distinct from the
// 0 result the injector returns for an unsupported key.
var ErrInvalidInvocation = errors.New("invalid invocation")

// Sender is the core function exposed to hosts
type Sender interface {
	SendCtrlKey(key string) int
}

// Call validates host arguments and invokes send_ctrl_key.
func Call(s Sender, args ...any) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected 1 argument, got %d", ErrInvalidInvocation, len(args))
	}

	key, ok := args[0].(string)
	if !ok {
		return 0, fmt.Errorf("%w: argument must be a string, got %T", ErrInvalidInvocation, args[0])
	}

	if len(key) == 0 || len(key) > MaxKeyLength {
		return 0, fmt.Errorf("%w: key identifier must be 1 to %d bytes, got %d", ErrInvalidInvocation, MaxKeyLength, len(key))
	}

	return s.SendCtrlKey(key), nil
}

// Decode parses a JSON array of host arguments, e.g. ["C"]
func Decode(raw []byte) ([]any, error) {
	var args []any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: arguments must be a JSON array: %v", ErrInvalidInvocation, err)
	}
	return args, nil
}

// Bool converts a send_ctrl_key result to the host's boolean convention
func Bool(result int) bool {
	return result == 1
}
