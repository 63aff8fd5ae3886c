package inmemdb

import (
	"context"

	"github.com/trezcool/timeac/core/admin"
)

type adminRepository struct {
	db *settingsTable
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) *adminRepository {
	return &adminRepository{db: db.settings}
}

func (repo *adminRepository) GetPasswordHash(_ context.Context) ([]byte, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.password == nil {
		return nil, admin.ErrNotFound
	}
	return append([]byte(nil), repo.db.password...), nil
}

func (repo *adminRepository) SetPasswordHash(_ context.Context, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.password = append([]byte(nil), hash...)
	return nil
}
