// Package display keeps the resolution of the current time up to date and fans it out.
package display

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/timeac/core"
	"github.com/trezcool/timeac/core/schedule"
)

// mockable funcs (for testing)
var NowFunc = time.Now

type (
	// ScheduleSource is the state container the monitor resolves against.
	ScheduleSource interface {
		Snapshot() schedule.Snapshot
		Subscribe(fn func(schedule.Snapshot)) (unsubscribe func())
	}

	// AliasPublisher receives the alias of every resolution.
	AliasPublisher interface {
		PublishAlias(ctx context.Context, alias string) error
	}

	Options struct {
		HourFormat   schedule.HourFormat
		TickInterval time.Duration
	}

	// Monitor re-resolves on every tick and on every schedule change, from a single goroutine.
	Monitor struct {
		source ScheduleSource
		bell   AliasPublisher
		log    core.Logger
		format schedule.HourFormat
		tick   time.Duration

		mu      sync.RWMutex
		current schedule.Resolution
		ready   bool

		subMu   sync.Mutex
		subs    map[int]func(schedule.Resolution)
		nextSub int
	}
)

func NewMonitor(source ScheduleSource, bell AliasPublisher, log core.Logger, opts Options) *Monitor {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	return &Monitor{
		source: source,
		bell:   bell,
		log:    log,
		format: opts.HourFormat,
		tick:   opts.TickInterval,
		subs:   make(map[int]func(schedule.Resolution)),
	}
}

// Run resolves until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	changes := make(chan struct{}, 1)
	unsubscribe := m.source.Subscribe(func(schedule.Snapshot) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	m.Step(ctx, true)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Step(ctx, false)
		case <-changes:
			m.Step(ctx, true)
		}
	}
}

// Step runs one resolution pass. Subscribers are notified when the state changed, or always when force is set.
func (m *Monitor) Step(ctx context.Context, force bool) schedule.Resolution {
	snap := m.source.Snapshot()
	res := schedule.Resolve(NowFunc(), snap.Schedules, snap.Settings, m.format)

	m.mu.Lock()
	changed := force || !m.ready || !m.current.SameState(res)
	m.current = res
	m.ready = true
	m.mu.Unlock()

	if m.bell != nil {
		if err := m.bell.PublishAlias(ctx, res.Alias().String()); err != nil {
			m.log.Error("publishing alias", err)
		}
	}
	if changed {
		m.notify(res)
	}
	return res
}

// Current returns the latest resolution, resolving on demand before the first pass.
func (m *Monitor) Current() schedule.Resolution {
	m.mu.RLock()
	res, ready := m.current, m.ready
	m.mu.RUnlock()
	if ready {
		return res
	}
	snap := m.source.Snapshot()
	return schedule.Resolve(NowFunc(), snap.Schedules, snap.Settings, m.format)
}

// Subscribe registers fn to receive every changed resolution. fn must not block.
func (m *Monitor) Subscribe(fn func(schedule.Resolution)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

func (m *Monitor) notify(res schedule.Resolution) {
	m.subMu.Lock()
	fns := make([]func(schedule.Resolution), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(res)
	}
}
