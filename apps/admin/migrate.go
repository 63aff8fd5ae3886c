package main

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	appfs "github.com/trezcool/timeac/fs"
)

// mockable
var gooseRunFunc = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
	return goose.RunContext(ctx, command, db, dir, args...)
}

func (cli *commandLine) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command (up, up-by-one, up-to, down, down-to, redo, reset, status, version)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.migrate(cmd.Context(), args)
		},
	}
}

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(cli.db.DriverName()); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(ctx, args[0], cli.db.DB, "migrations", arguments...)
}
