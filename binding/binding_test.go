package binding

import (
	"errors"
	"strings"
	"testing"
)

type recordingSender struct {
	keys   []string
	result int
}

func (r *recordingSender) SendCtrlKey(key string) int {
	r.keys = append(r.keys, key)
	return r.result
}

func TestCallInvalidInvocation(t *testing.T) {
	tests := []struct {
		name string
		args []any
	}{
		{"no arguments", nil},
		{"number", []any{42}},
		{"nil", []any{nil}},
		{"bytes", []any{[]byte("C")}},
		{"two arguments", []any{"C", "V"}},
		{"empty", []any{""}},
		{"too long", []any{strings.Repeat("C", MaxKeyLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSender{result: 1}
			_, err := Call(s, tt.args...)
			if !errors.Is(err, ErrInvalidInvocation) {
				t.Fatalf("Call error = %v, want ErrInvalidInvocation", err)
			}
			if len(s.keys) != 0 {
				t.Errorf("sender called with %v, want no calls", s.keys)
			}
		})
	}
}

func TestCallPassesResultThrough(t *testing.T) {
	for _, result := range []int{0, 1} {
		s := &recordingSender{result: result}
		got, err := Call(s, "V")
		if err != nil {
			t.Fatalf("Call: %v", err)
		}
		if got != result {
			t.Errorf("Call = %d, want %d", got, result)
		}
		if len(s.keys) != 1 || s.keys[0] != "V" {
			t.Errorf("sender keys = %v, want [V]", s.keys)
		}
	}
}

func TestCallUnsupportedKeyIsNotAnError(t *testing.T) {
	s := &recordingSender{result: 0}
	got, err := Call(s, "X")
	if err != nil {
		t.Fatalf("Call(X) error = %v, want nil", err)
	}
	if got != 0 {
		t.Errorf("Call(X) = %d, want 0", got)
	}
}

func TestDecode(t *testing.T) {
	args, err := Decode([]byte(`["C"]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(args) != 1 || args[0] != "C" {
		t.Errorf("Decode = %v, want [C]", args)
	}

	args, err = Decode([]byte(`[1]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := Call(&recordingSender{}, args...); !errors.Is(err, ErrInvalidInvocation) {
		t.Errorf("Call with numeric argument error = %v, want ErrInvalidInvocation", err)
	}

	if _, err := Decode([]byte(`"C"`)); !errors.Is(err, ErrInvalidInvocation) {
		t.Errorf("Decode(non-array) error = %v, want ErrInvalidInvocation", err)
	}
}

func TestBool(t *testing.T) {
	if !Bool(1) || Bool(0) {
		t.Error("Bool(1) should be true and Bool(0) false")
	}
}
