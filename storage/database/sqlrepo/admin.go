package sqlrepo

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core"
	"github.com/trezcool/timeac/core/admin"
)

const passwordKey = "password"

type adminRepository struct {
	db core.DB
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db core.DB) *adminRepository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) GetPasswordHash(ctx context.Context) ([]byte, error) {
	value, err := getSetting(ctx, repo.db, passwordKey)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil, admin.ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

func (repo *adminRepository) SetPasswordHash(ctx context.Context, hash []byte) error {
	return setSetting(ctx, repo.db, passwordKey, string(hash))
}
