package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/cullgo/internal/culling"
	"github.com/udisondev/cullgo/internal/model"
)

// RunStats is one recorded snapshot of a run.
type RunStats struct {
	RunID      uuid.UUID
	Frame      uint64
	RecordedAt time.Time
	Stats      culling.Stats
}

// StatsRepository stores cull statistics snapshots.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new statistics repository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Save inserts one snapshot row and its per-category rows in a single transaction.
func (r *StatsRepository) Save(ctx context.Context, runID uuid.UUID, frame uint64, stats culling.Stats) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for run %s: %w", runID, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "runID", runID, "error", err)
		}
	}()

	var snapshotID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO cull_runs (run_id, frame, ticks, fast_path_ticks, context_changes,
		     reconcile_dropped, reconcile_destroyed, unculled_destroyed, currently_culled, stranded)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		runID, int64(frame), int64(stats.Ticks), int64(stats.FastPathTicks), int64(stats.ContextChanges),
		int64(stats.ReconcileDropped), int64(stats.ReconcileDestroyed), int64(stats.UnculledDestroyed),
		stats.CurrentlyCulled, stats.Stranded,
	).Scan(&snapshotID)
	if err != nil {
		return fmt.Errorf("inserting snapshot for run %s frame %d: %w", runID, frame, err)
	}

	rows := make([][]any, 0, model.CategoryCount)
	for _, c := range model.AllCategories() {
		cs := stats.Category(c)
		rows = append(rows, []any{
			snapshotID, c.String(),
			int64(cs.Scans), int64(cs.Members), int64(cs.Culled), int64(cs.Unculled),
			int64(cs.ScanTime),
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"cull_category_stats"},
		[]string{"snapshot_id", "category", "scans", "members", "culled", "unculled", "scan_time_ns"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting category stats for run %s frame %d: %w", runID, frame, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for run %s: %w", runID, err)
	}

	slog.Debug("cull stats saved", "runID", runID, "frame", frame, "culled", stats.CurrentlyCulled)
	return nil
}

// LatestForRun returns the most recent snapshot of a run.
// Returns nil, nil if the run has no snapshots.
func (r *StatsRepository) LatestForRun(ctx context.Context, runID uuid.UUID) (*RunStats, error) {
	var (
		rs         RunStats
		snapshotID int64
		frame      int64
		ticks      int64
		fastPath   int64
		changes    int64
		dropped    int64
		destroyed  int64
		unculled   int64
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, run_id, frame, recorded_at, ticks, fast_path_ticks, context_changes,
		        reconcile_dropped, reconcile_destroyed, unculled_destroyed, currently_culled, stranded
		 FROM cull_runs
		 WHERE run_id = $1
		 ORDER BY frame DESC, id DESC
		 LIMIT 1`, runID,
	).Scan(&snapshotID, &rs.RunID, &frame, &rs.RecordedAt, &ticks, &fastPath, &changes,
		&dropped, &destroyed, &unculled, &rs.Stats.CurrentlyCulled, &rs.Stats.Stranded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying latest snapshot for run %s: %w", runID, err)
	}
	rs.Frame = uint64(frame)
	rs.Stats.Ticks = uint64(ticks)
	rs.Stats.FastPathTicks = uint64(fastPath)
	rs.Stats.ContextChanges = uint64(changes)
	rs.Stats.ReconcileDropped = uint64(dropped)
	rs.Stats.ReconcileDestroyed = uint64(destroyed)
	rs.Stats.UnculledDestroyed = uint64(unculled)

	rows, err := r.pool.Query(ctx,
		`SELECT category, scans, members, culled, unculled, scan_time_ns
		 FROM cull_category_stats WHERE snapshot_id = $1`, snapshotID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying category stats for run %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var scans, members, culled, un, scanTimeNs int64
		if err := rows.Scan(&name, &scans, &members, &culled, &un, &scanTimeNs); err != nil {
			return nil, fmt.Errorf("scanning category stats row: %w", err)
		}
		c, ok := model.ParseCategory(name)
		if !ok {
			slog.Warn("unknown category in stored stats", "runID", runID, "category", name)
			continue
		}
		rs.Stats.Categories[c] = culling.CategoryStats{
			Scans:    uint64(scans),
			Members:  uint64(members),
			Culled:   uint64(culled),
			Unculled: uint64(un),
			ScanTime: time.Duration(scanTimeNs),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category stats: %w", err)
	}

	return &rs, nil
}
