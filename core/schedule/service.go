package schedule

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core"
)

// ChangeTopic is the notifier topic announcing that the collection or the settings changed.
const ChangeTopic = "schedules.changed"

var (
	// errors
	ErrNotFound = errors.New("not found")
)

type (
	// Repository is the persistent schedule store.
	Repository interface {
		QueryAllSchedules(ctx context.Context) ([]Schedule, error)
		// GetSettings returns ErrNotFound when no settings were saved yet.
		GetSettings(ctx context.Context) (Settings, error)
		SaveSettings(ctx context.Context, settings Settings) error
		// Replace atomically swaps the whole collection and the settings.
		Replace(ctx context.Context, snap Snapshot) error
	}

	// Cache is a local copy of the collection, read before the repository.
	Cache interface {
		// LoadSchedules returns ErrNotFound when nothing is cached.
		LoadSchedules(ctx context.Context) ([]Schedule, error)
		StoreSchedules(ctx context.Context, schedules []Schedule) error
	}

	// DatasetFunc returns the bundled default collection.
	DatasetFunc func() ([]Schedule, error)

	Deps struct {
		Repo     Repository
		Cache    Cache         // optional
		Notifier core.Notifier // optional
		Logger   core.Logger
		Validate *validator.Validate
		Dataset  DatasetFunc
	}

	Options struct {
		IDScope IDScope
	}

	// Service holds the current snapshot and serializes every change to it.
	Service struct {
		repo     Repository
		cache    Cache
		notifier core.Notifier
		log      core.Logger
		validate *validator.Validate
		dataset  DatasetFunc
		idScope  IDScope
		origin   string // tags the change notifications of this service

		writeMu sync.Mutex // one writer at a time
		mu      sync.RWMutex
		snap    Snapshot

		subMu   sync.Mutex
		subs    map[int]func(Snapshot)
		nextSub int
	}
)

func NewService(deps Deps, opts Options) *Service {
	return &Service{
		repo:     deps.Repo,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		log:      deps.Logger,
		validate: deps.Validate,
		dataset:  deps.Dataset,
		idScope:  opts.IDScope,
		origin:   uuid.NewString(),
		snap:     Snapshot{Settings: DefaultSettings()},
		subs:     make(map[int]func(Snapshot)),
	}
}

// Snapshot returns a copy of the current collection and settings.
func (svc *Service) Snapshot() Snapshot {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.snap.Clone()
}

func (svc *Service) Schedules() []Schedule {
	return svc.Snapshot().Schedules
}

func (svc *Service) Settings() Settings {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.snap.Settings
}

// Subscribe registers fn to receive every new snapshot. fn runs on the writer's goroutine and must not block.
func (svc *Service) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	svc.subMu.Lock()
	id := svc.nextSub
	svc.nextSub++
	svc.subs[id] = fn
	svc.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			svc.subMu.Lock()
			delete(svc.subs, id)
			svc.subMu.Unlock()
		})
	}
}

func (svc *Service) notifySubscribers(snap Snapshot) {
	svc.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(svc.subs))
	for _, fn := range svc.subs {
		fns = append(fns, fn)
	}
	svc.subMu.Unlock()

	for _, fn := range fns {
		fn(snap.Clone())
	}
}

func (svc *Service) swap(snap Snapshot) {
	svc.mu.Lock()
	svc.snap = snap.Clone()
	svc.mu.Unlock()
	svc.notifySubscribers(snap)
}

// Load fills the snapshot from the cache, then the repository, seeding an empty repository from the dataset.
func (svc *Service) Load(ctx context.Context) error {
	svc.writeMu.Lock()
	defer svc.writeMu.Unlock()

	if schedules, ok := svc.loadCached(ctx); ok {
		settings, err := svc.loadSettings(ctx)
		if err != nil {
			return err
		}
		svc.swap(Snapshot{Schedules: schedules, Settings: settings})
		return nil
	}
	return svc.loadFromRepo(ctx)
}

// Refresh reloads the snapshot from the repository, bypassing the cache.
func (svc *Service) Refresh(ctx context.Context) error {
	svc.writeMu.Lock()
	defer svc.writeMu.Unlock()
	return svc.loadFromRepo(ctx)
}

func (svc *Service) loadCached(ctx context.Context) ([]Schedule, bool) {
	if svc.cache == nil {
		return nil, false
	}
	schedules, err := svc.cache.LoadSchedules(ctx)
	switch {
	case err == nil:
		if len(schedules) == 0 {
			return nil, false
		}
		if vErr := ValidateCollection(svc.validate, schedules); vErr != nil {
			svc.log.Warn("discarding invalid cached schedules", vErr)
			return nil, false
		}
		return schedules, true
	case errors.Cause(err) == ErrNotFound:
	default:
		svc.log.Warn("discarding cached schedules", err)
	}
	return nil, false
}

func (svc *Service) loadSettings(ctx context.Context) (Settings, error) {
	settings, err := svc.repo.GetSettings(ctx)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return DefaultSettings(), nil
		}
		return Settings{}, errors.Wrap(err, "loading settings")
	}
	return settings, nil
}

func (svc *Service) loadFromRepo(ctx context.Context) error {
	schedules, err := svc.repo.QueryAllSchedules(ctx)
	if err != nil {
		return errors.Wrap(err, "loading schedules")
	}
	settings, err := svc.loadSettings(ctx)
	if err != nil {
		return err
	}

	snap := Snapshot{Schedules: schedules, Settings: settings}
	if len(schedules) == 0 {
		seed, err := svc.dataset()
		if err != nil {
			return errors.Wrap(err, "loading default dataset")
		}
		snap.Schedules = seed
		if err = svc.repo.Replace(ctx, snap); err != nil {
			return errors.Wrap(err, "seeding schedules")
		}
		svc.log.Info("seeded schedules from the default dataset", map[string]interface{}{"total": len(seed)})
	}

	svc.storeCache(ctx, snap.Schedules)
	svc.swap(snap)
	return nil
}

func (svc *Service) storeCache(ctx context.Context, schedules []Schedule) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.StoreSchedules(ctx, schedules); err != nil {
		svc.log.Error("caching schedules", err)
	}
}

// commit persists next, then swaps it in. The snapshot is left untouched when the repository write fails.
func (svc *Service) commit(ctx context.Context, next Snapshot) error {
	if err := svc.repo.Replace(ctx, next); err != nil {
		return errors.Wrap(err, "saving schedules")
	}
	svc.storeCache(ctx, next.Schedules)
	svc.swap(next)
	svc.publish(ctx)
	return nil
}

func (svc *Service) publish(ctx context.Context) {
	if svc.notifier == nil {
		return
	}
	if err := svc.notifier.Publish(ctx, ChangeTopic, svc.origin); err != nil {
		svc.log.Error("publishing schedule change", err)
	}
}

// mutate applies fn to a copy of the current snapshot and commits the result.
func (svc *Service) mutate(ctx context.Context, fn func(cur Snapshot) (Snapshot, error)) (Snapshot, error) {
	svc.writeMu.Lock()
	defer svc.writeMu.Unlock()

	next, err := fn(svc.Snapshot())
	if err != nil {
		return Snapshot{}, err
	}
	if err = svc.commit(ctx, next); err != nil {
		return Snapshot{}, err
	}
	return next, nil
}

// Save validates and replaces the whole collection and settings.
func (svc *Service) Save(ctx context.Context, snap Snapshot) (Snapshot, error) {
	snap = snap.Clone()
	if err := ValidateCollection(svc.validate, snap.Schedules); err != nil {
		return Snapshot{}, err
	}
	if err := svc.validate.Struct(snap.Settings); err != nil {
		return Snapshot{}, err
	}
	return svc.mutate(ctx, func(Snapshot) (Snapshot, error) {
		return snap, nil
	})
}

// Reset replaces everything with the default dataset and default settings.
func (svc *Service) Reset(ctx context.Context) (Snapshot, error) {
	seed, err := svc.dataset()
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "loading default dataset")
	}
	return svc.mutate(ctx, func(Snapshot) (Snapshot, error) {
		return Snapshot{Schedules: seed, Settings: DefaultSettings()}, nil
	})
}

// ToggleDayType flips tod between Normal and Special.
func (svc *Service) ToggleDayType(ctx context.Context, tod TimeOfDay) (Settings, error) {
	if !tod.Valid() {
		return Settings{}, core.NewFieldValidationError("timeOfDay", "must be one of Morning, Afternoon")
	}

	svc.writeMu.Lock()
	defer svc.writeMu.Unlock()

	next := svc.Snapshot()
	next.Settings = next.Settings.Toggle(tod)
	if err := svc.repo.SaveSettings(ctx, next.Settings); err != nil {
		return Settings{}, errors.Wrap(err, "saving settings")
	}
	svc.swap(next)
	svc.publish(ctx)
	return next.Settings, nil
}

// EditBlock validates edit and applies it to a block.
func (svc *Service) EditBlock(ctx context.Context, scheduleID, blockID int, edit BlockEdit) (Block, error) {
	if err := ValidateEdit(svc.validate, &edit); err != nil {
		return Block{}, err
	}

	var blk Block
	_, err := svc.mutate(ctx, func(cur Snapshot) (Snapshot, error) {
		schedules, err := EditBlock(cur.Schedules, scheduleID, blockID, edit)
		if err != nil {
			return Snapshot{}, err
		}
		s := schedules[indexOf(schedules, scheduleID)]
		blk = s.Blocks[s.BlockIndex(blockID)]
		cur.Schedules = schedules
		return cur, nil
	})
	return blk, err
}

// AddBlock appends a default block to a schedule.
func (svc *Service) AddBlock(ctx context.Context, scheduleID int) (Block, error) {
	var blk Block
	_, err := svc.mutate(ctx, func(cur Snapshot) (Snapshot, error) {
		schedules, added, err := AddBlock(cur.Schedules, scheduleID, svc.idScope)
		if err != nil {
			return Snapshot{}, err
		}
		blk = added
		cur.Schedules = schedules
		return cur, nil
	})
	return blk, err
}

// DeleteBlock removes a block from a schedule.
func (svc *Service) DeleteBlock(ctx context.Context, scheduleID, blockID int) error {
	_, err := svc.mutate(ctx, func(cur Snapshot) (Snapshot, error) {
		schedules, err := DeleteBlock(cur.Schedules, scheduleID, blockID)
		if err != nil {
			return Snapshot{}, err
		}
		cur.Schedules = schedules
		return cur, nil
	})
	return err
}

// SetStartTime changes the start time of a schedule.
func (svc *Service) SetStartTime(ctx context.Context, scheduleID int, upd StartTimeUpdate) (Schedule, error) {
	if err := upd.Validate(svc.validate); err != nil {
		return Schedule{}, err
	}

	var sched Schedule
	_, err := svc.mutate(ctx, func(cur Snapshot) (Snapshot, error) {
		schedules, err := SetStartTime(cur.Schedules, scheduleID, upd.StartTime)
		if err != nil {
			return Snapshot{}, err
		}
		sched = schedules[indexOf(schedules, scheduleID)].Clone()
		cur.Schedules = schedules
		return cur, nil
	})
	return sched, err
}

// Listen reloads the snapshot whenever another service announces a change, until ctx is done.
// Changes announced by svc itself are skipped.
func (svc *Service) Listen(ctx context.Context) error {
	if svc.notifier == nil {
		return nil
	}
	unsubscribe, err := svc.notifier.Subscribe(ChangeTopic, func(origin string) {
		if origin == svc.origin {
			return
		}
		if err := svc.Refresh(ctx); err != nil {
			svc.log.Error("refreshing schedules", err)
		}
	})
	if err != nil {
		return errors.Wrap(err, "subscribing to schedule changes")
	}
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	return nil
}
