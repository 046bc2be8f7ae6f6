package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/cullgo/internal/culling"
)

// flushTimeout bounds the final save after shutdown.
const flushTimeout = 5 * time.Second

// SnapshotSource returns the latest published snapshot.
type SnapshotSource interface {
	Snapshot() *Snapshot
}

// StatsSink persists cull statistics.
type StatsSink interface {
	Save(ctx context.Context, runID uuid.UUID, frame uint64, stats culling.Stats) error
}

// Recorder periodically saves the latest snapshot to a sink.
type Recorder struct {
	source   SnapshotSource
	sink     StatsSink
	runID    uuid.UUID
	interval time.Duration

	lastFrame uint64
	saved     int
}

// NewRecorder creates a recorder tagging every row with a fresh run id.
func NewRecorder(source SnapshotSource, sink StatsSink, interval time.Duration) *Recorder {
	return &Recorder{
		source:   source,
		sink:     sink,
		runID:    uuid.New(),
		interval: interval,
	}
}

// RunID returns the id rows are saved under.
func (r *Recorder) RunID() uuid.UUID {
	return r.runID
}

// Saved returns number of snapshots saved.
func (r *Recorder) Saved() int {
	return r.saved
}

// Start saves every interval until ctx is done, then flushes once more.
func (r *Recorder) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("stats recorder started", "runID", r.runID, "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
			r.Flush(flushCtx)
			cancel()
			slog.Info("stats recorder stopping", "saved", r.saved)
			return ctx.Err()

		case <-ticker.C:
			r.Flush(ctx)
		}
	}
}

// Flush saves the latest snapshot unless it was already saved. Sink errors
// are logged and retried on the next flush.
func (r *Recorder) Flush(ctx context.Context) {
	snap := r.source.Snapshot()
	if snap == nil || (r.saved > 0 && snap.Frame == r.lastFrame) {
		return
	}

	if err := r.sink.Save(ctx, r.runID, snap.Frame, snap.Stats); err != nil {
		slog.Warn("failed to save cull stats", "runID", r.runID, "frame", snap.Frame, "error", err)
		return
	}
	r.lastFrame = snap.Frame
	r.saved++
}
