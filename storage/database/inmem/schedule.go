package inmemdb

import (
	"context"

	"github.com/trezcool/timeac/core/schedule"
)

type scheduleRepository struct {
	db       *scheduleTable
	settings *settingsTable
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func NewScheduleRepository(db *DB) *scheduleRepository {
	return &scheduleRepository{db: db.schedule, settings: db.settings}
}

func (repo *scheduleRepository) QueryAllSchedules(_ context.Context) ([]schedule.Schedule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return schedule.CloneAll(repo.db.table), nil
}

func (repo *scheduleRepository) GetSettings(_ context.Context) (schedule.Settings, error) {
	repo.settings.mutex.RLock()
	defer repo.settings.mutex.RUnlock()

	if repo.settings.settings == nil {
		return schedule.Settings{}, schedule.ErrNotFound
	}
	return *repo.settings.settings, nil
}

func (repo *scheduleRepository) SaveSettings(_ context.Context, settings schedule.Settings) error {
	repo.settings.mutex.Lock()
	defer repo.settings.mutex.Unlock()
	repo.settings.settings = &settings
	return nil
}

func (repo *scheduleRepository) Replace(_ context.Context, snap schedule.Snapshot) error {
	repo.db.mutex.Lock()
	repo.settings.mutex.Lock()
	defer repo.db.mutex.Unlock()
	defer repo.settings.mutex.Unlock()

	repo.db.table = schedule.CloneAll(snap.Schedules)
	settings := snap.Settings
	repo.settings.settings = &settings
	return nil
}
