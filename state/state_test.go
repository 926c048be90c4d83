package state

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"newsradar/types"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	if tr.Busy() || tr.GetState() != StateIdle {
		t.Fatal("new tracker should be idle")
	}

	tr.Start("run-1")
	if !tr.Busy() || tr.GetState() != StateFetching {
		t.Fatalf("expected busy fetching, got %s", tr.GetState())
	}
	tr.SetState(StateIndexing)

	tr.Finish(&types.RunResult{RunID: "run-1", Status: types.StatusSuccess, Message: "ok"})
	snap := tr.Snapshot()
	if snap.Running || snap.State != StateComplete || snap.LastResult.RunID != "run-1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.StartedAt == nil {
		t.Fatal("started_at should be set")
	}

	tr.Start("run-2")
	tr.Finish(&types.RunResult{RunID: "run-2", Status: types.StatusError, Message: "Failed to store articles"})
	if tr.GetState() != StateError {
		t.Fatalf("error result should leave error state, got %s", tr.GetState())
	}

	tr.Start("run-3")
	tr.Fail(errors.New("disk full"))
	snap = tr.Snapshot()
	if snap.Running || snap.Error != "disk full" {
		t.Fatalf("unexpected failure snapshot: %+v", snap)
	}
}

func TestTrackerLogRingIsBounded(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 120; i++ {
		tr.AddLog(fmt.Sprintf("line %d", i))
	}
	logs := tr.Snapshot().Logs
	if len(logs) != 50 {
		t.Fatalf("expected 50 logs, got %d", len(logs))
	}
	if logs[0].Message != "line 70" || logs[49].Message != "line 119" {
		t.Fatalf("ring kept the wrong entries: %q .. %q", logs[0].Message, logs[49].Message)
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.AddLog(fmt.Sprintf("worker %d", i))
			_ = tr.Snapshot()
			_ = tr.Busy()
		}(i)
	}
	wg.Wait()
	if len(tr.Snapshot().Logs) != 8 {
		t.Fatalf("expected 8 logs")
	}
}
