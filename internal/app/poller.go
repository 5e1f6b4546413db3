package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/five82/bookclub/internal/ollama"
	"github.com/five82/bookclub/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// StatusSource is what the poller needs from the model server client.
type StatusSource interface {
	Model() string
	Tags(ctx context.Context) ([]ollama.Model, error)
}

// StartPoller launches a background goroutine that refreshes the model
// status in store. Consecutive failures back off exponentially up to
// maxBackoff. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, src StatusSource, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if err := refresh(ctx, store, src); err != nil {
				failures++
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// calculateBackoff doubles base once per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func refresh(ctx context.Context, store *state.Store, src StatusSource) error {
	models, err := src.Tags(ctx)
	if err != nil {
		store.UpdateModel(nil, err)
		log.Printf("status poll failed: %v", err)
		return err
	}

	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	status := state.ModelStatus{
		Available: ollama.HasModel(models, src.Model()),
		Models:    names,
		CheckedAt: time.Now(),
	}
	if status.Available {
		status.Text = fmt.Sprintf("%s ready", src.Model())
	} else {
		status.Text = fmt.Sprintf("%s not pulled (run: ollama pull %s)", src.Model(), src.Model())
	}
	store.UpdateModel(&status, nil)
	return nil
}
