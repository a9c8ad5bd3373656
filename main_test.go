package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"markestedt/autolib/storage"
)

func TestRunHistoryLimit(t *testing.T) {
	a, _ := newTestAgent(t, &countingBackend{accept: 4})

	base := time.Now().UTC().Add(-time.Minute)
	for i, key := range []string{"C", "V", "C"} {
		inv := &storage.Invocation{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Key:       key,
			Source:    "cli",
			Result:    1,
		}
		if err := a.db.SaveInvocation(inv); err != nil {
			t.Fatalf("SaveInvocation: %v", err)
		}
	}

	tests := []struct {
		args     []string
		wantRows int
	}{
		{[]string{"history"}, 3},
		{[]string{"history", "-limit", "1"}, 1},
		{[]string{"history", "-limit=2"}, 2},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		if err := run(context.Background(), a, tt.args, &out); err != nil {
			t.Fatalf("run %v: %v", tt.args, err)
		}

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		if !strings.HasPrefix(lines[0], "TIME") {
			t.Errorf("run %v: missing header in %q", tt.args, out.String())
		}
		if got := len(lines) - 1; got != tt.wantRows {
			t.Errorf("run %v: %d rows, want %d", tt.args, got, tt.wantRows)
		}
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	a, _ := newTestAgent(t, &countingBackend{accept: 4})

	for _, args := range [][]string{
		nil,
		{"bogus"},
		{"send"},
		{"send", "C", "V"},
		{"paste"},
		{"history", "-limit"},
		{"history", "-limit", "0"},
		{"history", "-limit", "x"},
		{"history", "extra"},
		{"history", "-count", "5"},
	} {
		var out bytes.Buffer
		if err := run(context.Background(), a, args, &out); err == nil {
			t.Errorf("run %q: expected an error", args)
		}
	}
}

func TestRunSend(t *testing.T) {
	tests := []struct {
		accept  int
		wantOut string
		wantErr bool
	}{
		{4, "1\n", false},
		{0, "0\n", true},
	}

	for _, tt := range tests {
		a, seen := newTestAgent(t, &countingBackend{accept: tt.accept})

		var out bytes.Buffer
		err := run(context.Background(), a, []string{"send", "V"}, &out)
		if (err != nil) != tt.wantErr {
			t.Errorf("accept %d: run error = %v, wantErr %v", tt.accept, err, tt.wantErr)
		}
		if out.String() != tt.wantOut {
			t.Errorf("accept %d: output = %q, want %q", tt.accept, out.String(), tt.wantOut)
		}
		if len(*seen) != 1 || (*seen)[0].Source != "cli" {
			t.Errorf("accept %d: recorded %+v", tt.accept, *seen)
		}
	}
}
