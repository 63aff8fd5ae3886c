package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core"
	"github.com/trezcool/timeac/core/admin"
	"github.com/trezcool/timeac/core/schedule"
	logsvc "github.com/trezcool/timeac/services/logger"
	"github.com/trezcool/timeac/storage/database"
	"github.com/trezcool/timeac/storage/database/sqlrepo"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer logger.Sync()

	// set up DB
	db, err := database.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:           db,
		scheduleRepo: sqlrepo.NewScheduleRepository(db),
		adminSvc:     admin.NewService(sqlrepo.NewAdminRepository(db), validate, conf),
		validate:     validate,
		translator:   translator,
		out:          os.Stdout,
	}
	if err = cli.run(os.Args); err != nil {
		if errors.Cause(err) != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", describe(err, cli))
		}
		logger.Sync()
		os.Exit(1)
	}
}
