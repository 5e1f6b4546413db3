package app

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/bookclub/internal/ollama"
	"github.com/five82/bookclub/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeSource struct {
	models []ollama.Model
	err    error
	calls  atomic.Int32
}

func (f *fakeSource) Model() string { return "phi3:mini" }

func (f *fakeSource) Tags(ctx context.Context) ([]ollama.Model, error) {
	f.calls.Add(1)
	return f.models, f.err
}

func TestRefresh_RecordsModelStatus(t *testing.T) {
	store := &state.Store{}
	src := &fakeSource{models: []ollama.Model{{Name: "llama3:latest"}, {Name: "phi3:mini"}}}

	if err := refresh(context.Background(), store, src); err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	snap := store.Snapshot()
	if !snap.HasModel || !snap.Model.Available {
		t.Fatalf("model status = %#v, want available", snap.Model)
	}
	if len(snap.Model.Models) != 2 {
		t.Fatalf("models = %v, want 2", snap.Model.Models)
	}

	src.models = []ollama.Model{{Name: "llama3:latest"}}
	_ = refresh(context.Background(), store, src)
	snap = store.Snapshot()
	if snap.Model.Available {
		t.Fatal("Available = true with model missing")
	}
	if want := "ollama pull phi3:mini"; !strings.Contains(snap.Model.Text, want) {
		t.Fatalf("Text = %q, want it to mention %q", snap.Model.Text, want)
	}
}

func TestRefresh_ErrorCountsFailure(t *testing.T) {
	store := &state.Store{}
	src := &fakeSource{err: errors.New("connection refused")}

	if err := refresh(context.Background(), store, src); err == nil {
		t.Fatal("refresh returned nil error")
	}
	if got := store.Snapshot().ConsecutiveFailures; got != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", got)
	}
}

func TestStartPoller_StopsOnCancel(t *testing.T) {
	store := &state.Store{}
	src := &fakeSource{}
	ctx, cancel := context.WithCancel(context.Background())

	StartPoller(ctx, store, src, 10*time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for src.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if src.calls.Load() < 2 {
		t.Fatalf("poller made %d calls, want at least 2", src.calls.Load())
	}

	cancel()
	time.Sleep(30 * time.Millisecond)
	stopped := src.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if src.calls.Load() != stopped {
		t.Fatal("poller kept running after cancel")
	}
}
