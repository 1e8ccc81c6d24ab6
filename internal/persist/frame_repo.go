package persist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/core/world"
)

// FrameStat is one row of per-frame telemetry.
type FrameStat struct {
	Frame     uint64
	DeltaTime float64
	Systems   int
	Events    int
	Applied   int
	Dropped   int
	Created   int
	Destroyed int
	Live      int
	Duration  time.Duration
}

// StatFromReport flattens a commit report into a telemetry row.
func StatFromReport(rep world.Report) FrameStat {
	return FrameStat{
		Frame:     rep.Frame,
		DeltaTime: rep.DeltaTime,
		Systems:   rep.Systems,
		Events:    rep.Events,
		Applied:   rep.Applied,
		Dropped:   rep.Dropped,
		Created:   len(rep.Created),
		Destroyed: len(rep.Destroyed),
		Live:      rep.Live,
		Duration:  rep.Duration,
	}
}

// FrameRepo buffers frame stats for one run and writes them in batches,
// one transaction per batch.
type FrameRepo struct {
	db    *DB
	runID uuid.UUID
	batch int
	buf   []FrameStat
	log   *zap.Logger
}

func NewFrameRepo(db *DB, batchSize int, log *zap.Logger) *FrameRepo {
	if batchSize < 1 {
		batchSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FrameRepo{
		db:    db,
		runID: uuid.New(),
		batch: batchSize,
		buf:   make([]FrameStat, 0, batchSize),
		log:   log,
	}
}

func (r *FrameRepo) RunID() uuid.UUID { return r.runID }

// StartRun records the run header: seed and resolved system order.
func (r *FrameRepo) StartRun(ctx context.Context, seed int64, order []string) error {
	_, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO runs (run_id, seed, systems) VALUES ($1, $2, $3)`,
		r.runID.String(), seed, strings.Join(order, ","),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Record buffers one frame and flushes when the batch is full.
func (r *FrameRepo) Record(ctx context.Context, s FrameStat) error {
	r.buf = append(r.buf, s)
	if len(r.buf) < r.batch {
		return nil
	}
	return r.Flush(ctx)
}

// Pending returns the number of buffered, unwritten frames.
func (r *FrameRepo) Pending() int { return len(r.buf) }

// Flush writes all buffered frames in a single transaction. On failure the
// buffer is kept so a later flush can retry.
func (r *FrameRepo) Flush(ctx context.Context) error {
	if len(r.buf) == 0 {
		return nil
	}
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("frame stats begin: %w", err)
	}
	defer tx.Rollback()

	for _, s := range r.buf {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO frame_stats (run_id, frame, delta_time, systems, events, applied, dropped, created, destroyed, live, duration_us)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			r.runID.String(), int64(s.Frame), s.DeltaTime, s.Systems, s.Events,
			s.Applied, s.Dropped, s.Created, s.Destroyed, s.Live, s.Duration.Microseconds(),
		); err != nil {
			return fmt.Errorf("frame stats insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("frame stats commit: %w", err)
	}
	r.buf = r.buf[:0]
	return nil
}

// Hook adapts the repo to a world commit hook. Write errors are logged,
// never returned into the frame loop.
func (r *FrameRepo) Hook(ctx context.Context) func(world.Report) {
	return func(rep world.Report) {
		if err := r.Record(ctx, StatFromReport(rep)); err != nil {
			r.log.Warn("frame telemetry write failed",
				zap.Uint64("frame", rep.Frame),
				zap.Int("pending", len(r.buf)),
				zap.Error(err),
			)
		}
	}
}

// Frames loads the stored frames of a run in frame order.
func (r *FrameRepo) Frames(ctx context.Context, runID uuid.UUID) ([]FrameStat, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		`SELECT frame, delta_time, systems, events, applied, dropped, created, destroyed, live, duration_us
		 FROM frame_stats WHERE run_id = $1 ORDER BY frame`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query frame stats: %w", err)
	}
	defer rows.Close()

	var out []FrameStat
	for rows.Next() {
		var (
			s     FrameStat
			frame int64
			us    int64
		)
		if err := rows.Scan(&frame, &s.DeltaTime, &s.Systems, &s.Events, &s.Applied,
			&s.Dropped, &s.Created, &s.Destroyed, &s.Live, &us); err != nil {
			return nil, fmt.Errorf("scan frame stats: %w", err)
		}
		s.Frame = uint64(frame)
		s.Duration = time.Duration(us) * time.Microsecond
		out = append(out, s)
	}
	return out, rows.Err()
}

// RunSystems returns the comma-joined system order stored for a run.
func (r *FrameRepo) RunSystems(ctx context.Context, runID uuid.UUID) ([]string, error) {
	var systems string
	err := r.db.SQL.QueryRowContext(ctx,
		`SELECT systems FROM runs WHERE run_id = $1`, runID.String(),
	).Scan(&systems)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	if systems == "" {
		return nil, nil
	}
	return strings.Split(systems, ","), nil
}
