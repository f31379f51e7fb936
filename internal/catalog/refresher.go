package catalog

import (
	"context"
	"log/slog"
	"time"
)

// Refresher re-runs the catalog pipeline on an interval so the
// in-memory catalog tracks upstream changes without a restart.
type Refresher struct {
	controller *Controller
	interval   time.Duration
}

// NewRefresher creates a refresh worker
func NewRefresher(controller *Controller, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &Refresher{
		controller: controller,
		interval:   interval,
	}
}

// Start begins the refresh worker in a goroutine
func (r *Refresher) Start(ctx context.Context) {
	go r.run(ctx)
}

// run is the main loop for the refresh worker
func (r *Refresher) run(ctx context.Context) {
	slog.Info("catalog refresh worker started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Load immediately on start
	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("catalog refresh worker stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	start := time.Now()
	if err := r.controller.Refresh(ctx); err != nil {
		slog.Error("catalog refresh aborted", "error", err)
		return
	}

	snap := r.controller.Snapshot()
	slog.Info("catalog refreshed",
		"courses", len(snap.Courses),
		"categories", len(snap.Categories),
		"instructors", len(snap.Instructors),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
