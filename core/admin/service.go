package admin

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core"
)

var (
	// errors
	ErrNotFound        = errors.New("password not set")
	ErrInvalidPassword = errors.New("Incorrect password.")
)

type (
	Repository interface {
		// GetPasswordHash returns ErrNotFound when no password was ever set.
		GetPasswordHash(ctx context.Context) ([]byte, error)
		SetPasswordHash(ctx context.Context, hash []byte) error
	}

	Service struct {
		repo            Repository
		validate        *validator.Validate
		defaultPassword string
	}
)

func NewService(repo Repository, validate *validator.Validate, conf *core.Config) *Service {
	return &Service{repo: repo, validate: validate, defaultPassword: conf.Admin.DefaultPassword}
}

// CheckPassword verifies pwd against the stored hash, or against the default password when none is stored.
func (svc *Service) CheckPassword(ctx context.Context, pwd string) error {
	hash, err := svc.repo.GetPasswordHash(ctx)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return errors.Wrap(err, "reading password")
		}
		if svc.defaultPassword == "" || pwd != svc.defaultPassword {
			return ErrInvalidPassword
		}
		return nil
	}
	if err = CheckPassword(hash, pwd); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// ChangePassword validates and stores a new admin password.
func (svc *Service) ChangePassword(ctx context.Context, cp ChangePassword) error {
	if err := svc.validate.Struct(cp); err != nil {
		return err
	}
	hash, err := HashPassword(cp.Password)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	if err = svc.repo.SetPasswordHash(ctx, hash); err != nil {
		return errors.Wrap(err, "saving password")
	}
	return nil
}
