package scheduler

import (
	"context"
	"errors"
	"testing"

	"newsradar/state"
	"newsradar/types"
)

type fakeRunner struct {
	tracker *state.Tracker
	err     error
	calls   int
}

func (f *fakeRunner) Process(context.Context) (*types.RunResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &types.RunResult{RunID: "r"}, nil
}

func (f *fakeRunner) Tracker() *state.Tracker { return f.tracker }

func TestNewRejectsBadSchedule(t *testing.T) {
	if _, err := New("every tuesday", &fakeRunner{tracker: state.NewTracker()}, nil); err == nil {
		t.Fatal("expected an error for an invalid expression")
	}
	if _, err := New("*/15 * * * *", &fakeRunner{tracker: state.NewTracker()}, nil); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
}

func TestTickSkipsWhileBusy(t *testing.T) {
	runner := &fakeRunner{tracker: state.NewTracker()}
	s, err := New("@hourly", runner, nil)
	if err != nil {
		t.Fatal(err)
	}

	runner.tracker.Start("manual")
	s.tick(context.Background())
	if runner.calls != 0 {
		t.Fatal("tick should not run while busy")
	}

	runner.tracker.Finish(&types.RunResult{Status: types.StatusSuccess})
	s.tick(context.Background())
	runner.err = errors.New("disk full")
	s.tick(context.Background())
	if runner.calls != 2 {
		t.Fatalf("calls = %d; want 2", runner.calls)
	}
}

func TestStartStop(t *testing.T) {
	s, err := New("@daily", &fakeRunner{tracker: state.NewTracker()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop(context.Background())
}
