package bell

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core"
)

var (
	// errors
	ErrNotFound      = errors.New("no alias published yet")
	errNothingToEdit = errors.New("provide at least one of autoRingEnabled or isSilenced")
)

// mockable funcs (for testing)
var afterFunc = time.AfterFunc

// Store is the bell-signal store shared with the bell controller.
type Store interface {
	// CurrentAlias returns ErrNotFound when no alias was ever published.
	CurrentAlias(ctx context.Context) (string, error)
	SetCurrentAlias(ctx context.Context, alias string) error
	// GetControls fills the fields that were never written with DefaultControls.
	GetControls(ctx context.Context) (Controls, error)
	UpdateControls(ctx context.Context, patch ControlsPatch) error
	IncrManualRing(ctx context.Context) (int64, error)
	SetRinging(ctx context.Context, ringing bool) error
}

// Service publishes aliases and drives the manual ring.
type Service struct {
	store        Store
	log          core.Logger
	ringDuration time.Duration

	mu        sync.Mutex
	published bool
	lastAlias string
	ringTimer *time.Timer

	// ringMu serializes isRinging writes; ringGen identifies the latest pulse.
	ringMu  sync.Mutex
	ringGen uint64
}

func NewService(store Store, log core.Logger, conf *core.Config) *Service {
	return &Service{store: store, log: log, ringDuration: conf.Bell.RingDuration}
}

// PublishAlias writes alias to the store when it differs from the last published one.
// The write is not retried: a failed alias is still considered published.
func (svc *Service) PublishAlias(ctx context.Context, alias string) error {
	svc.mu.Lock()
	if svc.published && svc.lastAlias == alias {
		svc.mu.Unlock()
		return nil
	}
	svc.published = true
	svc.lastAlias = alias
	svc.mu.Unlock()

	if err := svc.store.SetCurrentAlias(ctx, alias); err != nil {
		return errors.Wrapf(err, "publishing alias %q", alias)
	}
	return nil
}

func (svc *Service) CurrentAlias(ctx context.Context) (string, error) {
	return svc.store.CurrentAlias(ctx)
}

func (svc *Service) Controls(ctx context.Context) (Controls, error) {
	c, err := svc.store.GetControls(ctx)
	return c, errors.Wrap(err, "reading bell controls")
}

// UpdateControls flips the given switches and returns the resulting controls.
func (svc *Service) UpdateControls(ctx context.Context, patch ControlsPatch) (Controls, error) {
	if patch.IsEmpty() {
		return Controls{}, core.NewValidationError(errNothingToEdit)
	}
	if err := svc.store.UpdateControls(ctx, patch); err != nil {
		return Controls{}, errors.Wrap(err, "updating bell controls")
	}
	return svc.Controls(ctx)
}

// Ring bumps the manual ring counter and raises isRinging for the configured duration.
// Ringing again before the end extends the pulse.
func (svc *Service) Ring(ctx context.Context) (Controls, error) {
	if _, err := svc.store.IncrManualRing(ctx); err != nil {
		return Controls{}, errors.Wrap(err, "incrementing manual ring")
	}

	svc.ringMu.Lock()
	if err := svc.store.SetRinging(ctx, true); err != nil {
		svc.ringMu.Unlock()
		return Controls{}, errors.Wrap(err, "starting ring")
	}
	svc.ringGen++
	gen := svc.ringGen
	svc.mu.Lock()
	if svc.ringTimer != nil {
		svc.ringTimer.Stop()
	}
	svc.ringTimer = afterFunc(svc.ringDuration, func() { svc.stopRinging(gen) })
	svc.mu.Unlock()
	svc.ringMu.Unlock()

	return svc.Controls(ctx)
}

// stopRinging clears isRinging unless a newer pulse started since gen.
func (svc *Service) stopRinging(gen uint64) {
	svc.ringMu.Lock()
	defer svc.ringMu.Unlock()
	if gen != svc.ringGen {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.store.SetRinging(ctx, false); err != nil {
		svc.log.Error("stopping ring", err)
	}
}

// Close stops a pending ring pulse, clearing isRinging right away.
func (svc *Service) Close() {
	svc.mu.Lock()
	timer := svc.ringTimer
	svc.ringTimer = nil
	svc.mu.Unlock()

	if timer != nil && timer.Stop() {
		svc.ringMu.Lock()
		gen := svc.ringGen
		svc.ringMu.Unlock()
		svc.stopRinging(gen)
	}
}
