package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/timeac/core"
	"github.com/trezcool/timeac/core/admin"
	"github.com/trezcool/timeac/core/schedule"
	"github.com/trezcool/timeac/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db           *sqlx.DB
	scheduleRepo schedule.Repository
	adminSvc     *admin.Service
	validate     *validator.Validate
	translator   ut.Translator
	out          io.Writer
}

func (cli *commandLine) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "TimeAC administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.AddCommand(cli.importCommand())
	root.AddCommand(cli.resetPasswordCommand())
	root.AddCommand(cli.migrateCommand())
	return root
}

// run executes the command line; args include the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCommand()
	root.SetArgs(args[1:])
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	return root.ExecuteContext(context.Background())
}

// ensureSchema applies pending migrations before commands that touch the tables.
func (cli *commandLine) ensureSchema(ctx context.Context) error {
	if cli.db == nil {
		return nil
	}
	return database.Migrate(ctx, cli.db)
}

// describe renders validation errors field by field.
func describe(err error, cli commandLine) string {
	switch cause := pkgerrors.Cause(err).(type) {
	case validator.ValidationErrors:
		msgs := core.TranslateValidationErrors(cause, cli.translator)
		lines := make([]string, 0, len(msgs))
		for field, msg := range msgs {
			lines = append(lines, fmt.Sprintf("%s: %s", field, msg))
		}
		sort.Strings(lines)
		return strings.Join(lines, "\n")
	default:
		return err.Error()
	}
}
