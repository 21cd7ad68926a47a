// Package learnkit is the embedding facade: a one-call constructor that
// assembles a ProgressService from options, defaulting to in-memory storage
// and the built-in sample catalog.
package learnkit

import (
	"context"
	"time"

	"learnkit/adapters/memory"
	"learnkit/catalog"
	"learnkit/core"
	"learnkit/engine"
	"learnkit/realtime"
)

// Option configures the service builder.
type Option func(*config)

type config struct {
	store        engine.ProgressStore
	catalog      *catalog.Catalog
	mode         engine.DispatchMode
	hub          *realtime.Hub
	clock        func() time.Time
	achievements []core.AchievementDef
}

// WithStorage sets the persistence adapter.
func WithStorage(s engine.ProgressStore) Option { return func(c *config) { c.store = s } }

// WithCatalog sets the course catalog.
func WithCatalog(cat *catalog.Catalog) Option { return func(c *config) { c.catalog = cat } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all engine events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option { return func(c *config) { c.clock = now } }

// WithAchievements replaces the default achievement catalog.
func WithAchievements(defs []core.AchievementDef) Option {
	return func(c *config) { c.achievements = defs }
}

// New builds a configured ProgressService. If not provided, defaults are used:
//   - storage: in-memory
//   - catalog: built-in sample course
//   - dispatch: async
func New(opts ...Option) *engine.ProgressService {
	cfg := &config{mode: engine.DispatchAsync}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.store == nil {
		cfg.store = memory.New()
	}
	if cfg.catalog == nil {
		cfg.catalog = catalog.Sample()
	}

	var svcOpts []engine.ServiceOption
	if cfg.clock != nil {
		svcOpts = append(svcOpts, engine.WithClock(cfg.clock))
	}
	if cfg.achievements != nil {
		svcOpts = append(svcOpts, engine.WithAchievementCatalog(cfg.achievements))
	}

	bus := engine.NewEventBus(cfg.mode)
	svc := engine.NewProgressService(cfg.store, cfg.catalog, bus, svcOpts...)
	if cfg.hub != nil {
		// Bridge all primary events to realtime
		for _, typ := range []core.EventType{
			core.EventStageCompleted,
			core.EventLessonCompleted,
			core.EventLevelUp,
			core.EventAchievementUnlocked,
			core.EventStreakExtended,
		} {
			bus.Subscribe(typ, func(ctx context.Context, e core.Event) { cfg.hub.Broadcast(ctx, e) })
		}
	}
	return svc
}
