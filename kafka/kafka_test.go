package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"newsradar/pipeline"
	"newsradar/state"
	"newsradar/types"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

type fakeRunner struct {
	tracker *state.Tracker
	err     error
	calls   int
}

func (f *fakeRunner) Process(context.Context) (*types.RunResult, error) {
	f.calls++
	return &types.RunResult{RunID: "r1"}, f.err
}

func (f *fakeRunner) Tracker() *state.Tracker { return f.tracker }

func TestIngestHandler(t *testing.T) {
	valid := []byte(`{"requested_by":"ops","reason":"manual"}`)

	cases := []struct {
		name      string
		message   []byte
		busy      bool
		err       error
		wantMark  bool
		wantErr   bool
		wantCalls int
	}{
		{"success", valid, false, nil, true, false, 1},
		{"undecodable", []byte(`{`), false, nil, true, false, 0},
		{"busy", valid, true, nil, true, false, 0},
		{"no articles", valid, false, pipeline.ErrNoArticles, true, false, 1},
		{"index failed", valid, false, fmt.Errorf("%w: down", pipeline.ErrIndexFailed), true, false, 1},
		{"fatal", valid, false, errors.New("disk full"), false, true, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			runner := &fakeRunner{tracker: state.NewTracker(), err: c.err}
			if c.busy {
				runner.tracker.Start("other")
			}
			h := NewIngestHandler(runner, nil)

			mark, err := h.HandleMessage(context.Background(), c.message)
			if mark != c.wantMark {
				t.Fatalf("mark = %v; want %v", mark, c.wantMark)
			}
			if (err != nil) != c.wantErr {
				t.Fatalf("err = %v; wantErr %v", err, c.wantErr)
			}
			if runner.calls != c.wantCalls {
				t.Fatalf("Process calls = %d; want %d", runner.calls, c.wantCalls)
			}
		})
	}
}

func TestTypedMessageHandlerValidation(t *testing.T) {
	processed := 0
	h := &TypedMessageHandler[IngestRequest]{
		Validate: func(r *IngestRequest) bool { return r.RequestedBy != "" },
		Process:  func(context.Context, *IngestRequest) error { processed++; return nil },
	}

	mark, err := h.HandleMessage(context.Background(), []byte(`{"reason":"x"}`))
	if mark || err != nil || processed != 0 {
		t.Fatalf("invalid message: mark=%v err=%v processed=%d", mark, err, processed)
	}
	mark, err = h.HandleMessage(context.Background(), []byte(`{"requested_by":"cron"}`))
	if !mark || err != nil || processed != 1 {
		t.Fatalf("valid message: mark=%v err=%v processed=%d", mark, err, processed)
	}
}

func TestPublisherNotify(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var res types.RunResult
		if err := json.Unmarshal(val, &res); err != nil {
			return err
		}
		if res.RunID != "run-7" || res.IndexedCount != 4 {
			return fmt.Errorf("unexpected payload %s", val)
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newPublisher(producer, "results", nil)
	if err := p.Notify(context.Background(), &types.RunResult{RunID: "run-7", IndexedCount: 4}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := p.Notify(context.Background(), &types.RunResult{RunID: "run-8"}); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected broker error, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
