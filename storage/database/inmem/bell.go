package inmemdb

import (
	"context"

	"github.com/trezcool/timeac/core/bell"
)

type bellStore struct {
	db *bellTable
}

var _ bell.Store = (*bellStore)(nil)

func NewBellStore(db *DB) *bellStore {
	return &bellStore{db: db.bell}
}

func (s *bellStore) CurrentAlias(_ context.Context) (string, error) {
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()

	if s.db.alias == nil {
		return "", bell.ErrNotFound
	}
	return *s.db.alias, nil
}

func (s *bellStore) SetCurrentAlias(_ context.Context, alias string) error {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()
	s.db.alias = &alias
	return nil
}

func (s *bellStore) GetControls(_ context.Context) (bell.Controls, error) {
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()
	return s.db.controls, nil
}

func (s *bellStore) UpdateControls(_ context.Context, patch bell.ControlsPatch) error {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()
	s.db.controls = patch.Apply(s.db.controls)
	return nil
}

func (s *bellStore) IncrManualRing(_ context.Context) (int64, error) {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()
	s.db.controls.ManualRing++
	return s.db.controls.ManualRing, nil
}

func (s *bellStore) SetRinging(_ context.Context, ringing bool) error {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()
	s.db.controls.IsRinging = ringing
	return nil
}
