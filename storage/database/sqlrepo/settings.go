package sqlrepo

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core"
)

func getSetting(ctx context.Context, db core.DBExecutor, name string) (string, error) {
	var value string
	q := db.Rebind(`SELECT value FROM settings WHERE name = ?`)
	if err := db.GetContext(ctx, &value, q, name); err != nil {
		return "", errors.Wrapf(err, "reading setting %s", name)
	}
	return value, nil
}

// setSetting upserts a key/value pair. ON CONFLICT is understood by both postgres and sqlite.
func setSetting(ctx context.Context, db core.DBExecutor, name, value string) error {
	q := db.Rebind(`
		INSERT INTO settings (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value`)
	if _, err := db.ExecContext(ctx, q, name, value); err != nil {
		return errors.Wrapf(err, "writing setting %s", name)
	}
	return nil
}
