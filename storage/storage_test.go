package storage

import (
	"errors"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGetInvocations(t *testing.T) {
	db := openTestDB(t)
	base := time.Now().Add(-time.Minute)

	for i, key := range []string{"C", "V", "X"} {
		inv := &Invocation{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Key:       key,
			Source:    "cli",
			Result:    1,
			LatencyMs: int64(i),
		}
		if key == "X" {
			inv.Result = 0
			inv.ErrorMessage = "unsupported key"
		}
		if err := db.SaveInvocation(inv); err != nil {
			t.Fatalf("SaveInvocation(%s): %v", key, err)
		}
		if inv.ID == "" {
			t.Fatalf("SaveInvocation(%s) did not assign an ID", key)
		}
	}

	count, err := db.GetInvocationCount()
	if err != nil {
		t.Fatalf("GetInvocationCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	got, err := db.GetInvocations(2, 0)
	if err != nil {
		t.Fatalf("GetInvocations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Key != "X" || got[0].ErrorMessage != "unsupported key" || got[0].Result != 0 {
		t.Errorf("newest invocation = %+v", got[0])
	}
	if got[1].Key != "V" {
		t.Errorf("second invocation key = %q, want V", got[1].Key)
	}

	rest, err := db.GetInvocations(10, 2)
	if err != nil {
		t.Fatalf("GetInvocations offset: %v", err)
	}
	if len(rest) != 1 || rest[0].Key != "C" {
		t.Errorf("offset page = %+v, want only C", rest)
	}
}

func TestDeleteInvocation(t *testing.T) {
	db := openTestDB(t)

	inv := &Invocation{Key: "C", Source: "web", Result: 1}
	if err := db.SaveInvocation(inv); err != nil {
		t.Fatalf("SaveInvocation: %v", err)
	}

	if err := db.DeleteInvocation(inv.ID); err != nil {
		t.Fatalf("DeleteInvocation: %v", err)
	}
	if err := db.DeleteInvocation(inv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteInvocation error = %v, want ErrNotFound", err)
	}
}

func TestGetKeyStats(t *testing.T) {
	db := openTestDB(t)

	records := []Invocation{
		{Key: "C", Source: "cli", Result: 1, LatencyMs: 10},
		{Key: "C", Source: "cli", Result: 0, LatencyMs: 30},
		{Key: "V", Source: "web", Result: 1, LatencyMs: 5},
		{Key: "V", Source: "web", Result: 1, LatencyMs: 5, Timestamp: time.Now().AddDate(0, 0, -30)},
	}
	for i := range records {
		if err := db.SaveInvocation(&records[i]); err != nil {
			t.Fatalf("SaveInvocation: %v", err)
		}
	}

	stats, err := db.GetKeyStats(7)
	if err != nil {
		t.Fatalf("GetKeyStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("len = %d, want 2", len(stats))
	}

	c := stats[0]
	if c.Key != "C" || c.Total != 2 || c.SuccessCount != 1 || c.FailureCount != 1 || c.AvgLatencyMs != 20 {
		t.Errorf("C stats = %+v", c)
	}
	v := stats[1]
	if v.Key != "V" || v.Total != 1 || v.SuccessCount != 1 {
		t.Errorf("V stats = %+v", v)
	}
}
