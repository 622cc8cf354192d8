package diagnostics

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorLog_NewestFirst(t *testing.T) {
	log := NewErrorLog(5)
	log.Record(QueryContext{Operation: "first"}, errors.New("a"))
	log.Record(QueryContext{Operation: "second"}, errors.New("b"))

	recent := log.Recent()
	if len(recent) != 2 {
		t.Fatalf("entries: got %d, want 2", len(recent))
	}
	if recent[0].Context.Operation != "second" || recent[1].Context.Operation != "first" {
		t.Errorf("expected newest first, got %q then %q",
			recent[0].Context.Operation, recent[1].Context.Operation)
	}
}

func TestErrorLog_EvictsAtCapacity(t *testing.T) {
	log := NewErrorLog(3)
	for i := 0; i < 10; i++ {
		log.Record(QueryContext{Operation: fmt.Sprintf("op-%d", i)}, errors.New("boom"))
	}
	recent := log.Recent()
	if len(recent) != 3 {
		t.Fatalf("entries: got %d, want 3", len(recent))
	}
	if recent[0].Context.Operation != "op-9" {
		t.Errorf("newest entry: got %q, want op-9", recent[0].Context.Operation)
	}
	if recent[2].Context.Operation != "op-7" {
		t.Errorf("oldest kept entry: got %q, want op-7", recent[2].Context.Operation)
	}
}

func TestErrorLog_IgnoresNilAndClears(t *testing.T) {
	log := NewErrorLog(0) // default capacity
	log.Record(QueryContext{Operation: "noop"}, nil)
	if len(log.Recent()) != 0 {
		t.Error("nil error should not be recorded")
	}
	log.Record(QueryContext{Operation: "real"}, errors.New("x"))
	log.Clear()
	if len(log.Recent()) != 0 {
		t.Error("Clear should empty the log")
	}
}

func TestErrorLog_RecentReturnsCopy(t *testing.T) {
	log := NewErrorLog(5)
	log.Record(QueryContext{Operation: "op"}, errors.New("x"))
	recent := log.Recent()
	recent[0].Context.Operation = "mutated"
	if log.Recent()[0].Context.Operation != "op" {
		t.Error("Recent should return a copy, not the backing slice")
	}
}
