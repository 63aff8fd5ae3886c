package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/timeac/core/admin"
	"github.com/trezcool/timeac/core/schedule"
	"github.com/trezcool/timeac/storage/database/sqlrepo"
	"github.com/trezcool/timeac/tests"
)

type cliFixture struct {
	cli          *commandLine
	out          *bytes.Buffer
	scheduleRepo schedule.Repository
	adminRepo    admin.Repository
}

func setup(t *testing.T) cliFixture {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	scheduleRepo := sqlrepo.NewScheduleRepository(db)
	adminRepo := sqlrepo.NewAdminRepository(db)
	validate, translator := testutil.NewValidator()
	out := new(bytes.Buffer)

	// start CLI
	return cliFixture{
		cli: &commandLine{
			db:           db,
			scheduleRepo: scheduleRepo,
			adminSvc:     admin.NewService(adminRepo, validate, testutil.NewConfig()),
			validate:     validate,
			translator:   translator,
			out:          out,
		},
		out:          out,
		scheduleRepo: scheduleRepo,
		adminRepo:    adminRepo,
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, errors.Cause(err))
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_root(t *testing.T) {
	f := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol" for "admin"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, f.cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	f := setup(t)

	orig := gooseRunFunc
	defer func() { gooseRunFunc = orig }()
	var calls []string
	gooseRunFunc = func(_ context.Context, command string, _ *sql.DB, dir string, args ...string) error {
		calls = append(calls, fmt.Sprint(command, " ", args))
		if dir != "migrations" {
			return fmt.Errorf("unexpected dir %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, f.cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
	assert.Contains(t, calls, "up-to [1]")
	assert.Contains(t, calls, "status []")
}

func Test_commandLine_import_dryRun(t *testing.T) {
	f := setup(t)

	err := f.cli.run([]string{"admin", "import", "--file", "testdata/schedules.yaml"})
	require.NoError(t, err)
	newGoldie(t).Assert(t, "import_dry_run", f.out.Bytes())

	// nothing written
	schedules, err := f.scheduleRepo.QueryAllSchedules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func Test_commandLine_import_run(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	special := schedule.DefaultSettings().With(schedule.Afternoon, schedule.Special)
	require.NoError(t, f.scheduleRepo.SaveSettings(ctx, special))

	err := f.cli.run([]string{"admin", "import", "-f", "testdata/schedules.yaml", "--run"})
	require.NoError(t, err)
	newGoldie(t).Assert(t, "import_run", f.out.Bytes())

	schedules, err := f.scheduleRepo.QueryAllSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, 2, schedules[0].ID)
	assert.Equal(t, schedule.Alias("5"), schedules[0].Blocks[0].Alias)
	assert.Equal(t, schedule.Alias("R"), schedules[1].Blocks[1].Alias)

	// existing settings are kept
	settings, err := f.scheduleRepo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, special, settings)
}

func Test_commandLine_import_bundled(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.cli.run([]string{"admin", "import", "--run"}))

	schedules, err := f.scheduleRepo.QueryAllSchedules(context.Background())
	require.NoError(t, err)
	assert.Len(t, schedules, 4)
	assert.Contains(t, f.out.String(), "Total schedules: 4")
}

func Test_commandLine_import_errors(t *testing.T) {
	f := setup(t)

	err := f.cli.run([]string{"admin", "import", "-f", "testdata/nope.json"})
	assert.Error(t, err)

	err = f.cli.run([]string{"admin", "import", "-f", "testdata/invalid.json", "--run"})
	require.Error(t, err)
	msg := describe(err, *f.cli)
	assert.Contains(t, msg, "startTime: must be a time of day formatted as HH:MM")
	assert.Contains(t, msg, "duration: ")

	err = f.cli.run([]string{"admin", "import", "extra-arg"})
	assert.Error(t, err)

	schedules, err := f.scheduleRepo.QueryAllSchedules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func Test_commandLine_resetPassword(t *testing.T) {
	type prompt struct {
		pwd, confirm string
	}
	tests := []struct {
		cliTest
		prompt prompt
	}{
		{cliTest: cliTest{name: "empty password", args: []string{"resetpassword"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "unexpected args", args: []string{"resetpassword", "lol"}, wantErrStr: `unknown command "lol" for "admin resetpassword"`}},
		{
			cliTest: cliTest{name: "too short", args: []string{"resetpassword"}},
			prompt:  prompt{pwd: "abc", confirm: "abc"},
		},
		{
			cliTest: cliTest{name: "mismatch", args: []string{"resetpassword"}},
			prompt:  prompt{pwd: "abcd", confirm: "abce"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			mockPrompt(t, tt.prompt.pwd, tt.prompt.confirm)

			err := f.cli.run(append([]string{"admin"}, tt.args...))
			if tt.wantErr != nil || tt.wantErrStr != "" {
				tt.check(t, err)
			} else {
				var vErrs validator.ValidationErrors
				assert.ErrorAs(t, err, &vErrs)
			}

			_, err = f.adminRepo.GetPasswordHash(context.Background())
			assert.ErrorIs(t, err, admin.ErrNotFound)
		})
	}

	t.Run("success", func(t *testing.T) {
		f := setup(t)
		mockPrompt(t, "n3wPass", "n3wPass")

		require.NoError(t, f.cli.run([]string{"admin", "resetpassword"}))
		newGoldie(t).Assert(t, "resetpassword", f.out.Bytes())

		hash, err := f.adminRepo.GetPasswordHash(context.Background())
		require.NoError(t, err)
		assert.NoError(t, admin.CheckPassword(hash, "n3wPass"))
	})
}

// mockPrompt answers the password prompts in order.
func mockPrompt(t *testing.T, answers ...string) {
	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })
	var i int
	readPasswordFunc = func(int) ([]byte, error) {
		if i >= len(answers) {
			return nil, nil
		}
		i++
		return []byte(answers[i-1]), nil
	}
}
