// Package world ties the core together: it owns the component store, the
// scheduler, the per-frame mutation log and event channel, and drives one
// frame per Advance call.
package world

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	"github.com/l1jgo/simcore/internal/core/mutation"
	"github.com/l1jgo/simcore/internal/core/system"
)

// Report describes one committed frame.
type Report struct {
	Frame     uint64
	DeltaTime float64
	Systems   int
	Events    int
	Applied   int
	Dropped   int
	Created   []ecs.EntityID
	Destroyed []ecs.EntityID
	Live      int
	Duration  time.Duration
}

// World is the top-level container. It is not safe for concurrent use;
// callers that need that must serialize calls to Advance.
type World struct {
	store  *ecs.Store
	sched  *system.Scheduler
	log    *mutation.Log
	events *event.Channel
	logger *zap.Logger

	frame uint64
	hooks []func(Report)
}

type Option func(*World)

func WithLogger(l *zap.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// New builds a world, runs setup against it and resolves the system order,
// so configuration errors (cycles, duplicate or unknown tags) surface here
// rather than on the first Advance.
func New(setup func(*Init) error, opts ...Option) (*World, error) {
	w := &World{
		store:  ecs.NewStore(),
		sched:  system.NewScheduler(),
		log:    mutation.NewLog(),
		events: event.NewChannel(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if setup != nil {
		if err := setup(&Init{w: w}); err != nil {
			return nil, fmt.Errorf("world setup: %w", err)
		}
	}
	if _, err := w.sched.Order(); err != nil {
		return nil, fmt.Errorf("resolve system order: %w", err)
	}
	return w, nil
}

// Store gives read access to committed state. Adapters read it between
// frames; it must not be written to directly.
func (w *World) Store() *ecs.Store { return w.store }

// Frame returns the number of committed frames.
func (w *World) Frame() uint64 { return w.frame }

// Order returns the resolved system execution order.
func (w *World) Order() ([]string, error) { return w.sched.Order() }

// RegisterSystem adds systems between frames. The batch is validated as a
// whole: if any tag is a duplicate, or the new order has a cycle or an
// unknown dependency, none of the batch stays registered.
func (w *World) RegisterSystem(systems ...system.System) error {
	added := make([]string, 0, len(systems))
	rollback := func() {
		for _, tag := range added {
			_ = w.sched.Unregister(tag)
		}
	}
	for _, s := range systems {
		if err := w.sched.Register(s); err != nil {
			rollback()
			return err
		}
		added = append(added, s.Tag())
	}
	if _, err := w.sched.Order(); err != nil {
		rollback()
		return fmt.Errorf("register systems: %w", err)
	}
	return nil
}

// OnCommit registers a hook called after each successful commit.
func (w *World) OnCommit(fn func(Report)) {
	w.hooks = append(w.hooks, fn)
}

// Advance runs one frame: every system in dependency order, then the commit
// of all queued mutations, then the event clear. If any system fails, none of
// the frame's mutations are applied and the error is returned.
func (w *World) Advance(dt float64) error {
	start := time.Now()
	frame := w.frame + 1

	ctx := system.NewContext(w.store, w.log, w.events, w.logger)
	ctx.DeltaTime = dt
	ctx.Frame = frame

	committed := false
	defer func() {
		if !committed {
			w.abort()
		}
	}()

	if err := w.sched.Run(ctx); err != nil {
		w.logger.Error("frame aborted",
			zap.Uint64("frame", frame),
			zap.Error(err),
		)
		return fmt.Errorf("frame %d: %w", frame, err)
	}

	events := w.events.Len()
	res := w.log.Commit(w.store)
	committed = true
	w.events.Clear()
	w.frame = frame

	rep := Report{
		Frame:     frame,
		DeltaTime: dt,
		Systems:   w.sched.Len(),
		Events:    events,
		Applied:   res.Applied,
		Dropped:   res.Dropped,
		Created:   res.Created,
		Destroyed: res.Destroyed,
		Live:      w.store.Len(),
		Duration:  time.Since(start),
	}
	w.logger.Debug("frame committed",
		zap.Uint64("frame", rep.Frame),
		zap.Int("applied", rep.Applied),
		zap.Int("dropped", rep.Dropped),
		zap.Int("events", rep.Events),
		zap.Int("live", rep.Live),
		zap.Duration("took", rep.Duration),
	)
	for _, h := range w.hooks {
		h(rep)
	}
	return nil
}

// abort throws away everything the failed frame queued. It runs on any exit
// from Advance that did not reach the commit, panics included. Entity IDs reserved
// during the frame stay burned.
func (w *World) abort() {
	for _, m := range w.log.Entries() {
		if m.Op == mutation.OpCreate {
			w.store.Release(m.Entity)
		}
	}
	w.log.Reset()
	w.events.Clear()
}
