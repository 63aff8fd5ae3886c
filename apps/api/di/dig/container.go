package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/trezcool/timeac/apps/api/echo"
	"github.com/trezcool/timeac/core"
	"github.com/trezcool/timeac/core/admin"
	"github.com/trezcool/timeac/core/bell"
	"github.com/trezcool/timeac/core/display"
	"github.com/trezcool/timeac/core/schedule"
	appfs "github.com/trezcool/timeac/fs"
	logsvc "github.com/trezcool/timeac/services/logger"
	"github.com/trezcool/timeac/storage/database"
	inmemdb "github.com/trezcool/timeac/storage/database/inmem"
	"github.com/trezcool/timeac/storage/database/sqlrepo"
	"github.com/trezcool/timeac/storage/redisstore"
)

// EngineMemory keeps every store in process memory.
const EngineMemory = "memory"

type (
	// Resources are the stores every service is built on, opened according to the config.
	Resources struct {
		DB    *sqlx.DB      // nil with the memory engine
		Redis *redis.Client // nil when no redis address is configured

		ScheduleRepo schedule.Repository
		AdminRepo    admin.Repository
		BellStore    bell.Store
		Cache        schedule.Cache // nil without redis
		Notifier     core.Notifier
	}

	ServerParams struct {
		dig.In

		Conf        *core.Config
		Logger      core.Logger
		Validate    *validator.Validate
		Translator  ut.Translator
		ScheduleSvc *schedule.Service
		AdminSvc    *admin.Service
		BellSvc     *bell.Service
		Monitor     *display.Monitor
	}
)

// Close releases the database and redis connections.
func (res *Resources) Close() error {
	var errs []error
	if res.Redis != nil {
		if err := res.Redis.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "closing redis"))
		}
	}
	if res.DB != nil {
		if err := res.DB.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "closing database"))
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func newZapLogger(conf *core.Config) (*zap.Logger, error) {
	return logsvc.NewZapLogger(conf)
}

func newLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)
	return validate
}

func newResources(conf *core.Config, logger core.Logger) (*Resources, error) {
	ctx := context.Background()
	res := new(Resources)

	if conf.Database.Engine == EngineMemory {
		mem := inmemdb.Open()
		res.ScheduleRepo = inmemdb.NewScheduleRepository(mem)
		res.AdminRepo = inmemdb.NewAdminRepository(mem)
		res.BellStore = inmemdb.NewBellStore(mem)
	} else {
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		res.DB = db
		res.ScheduleRepo = sqlrepo.NewScheduleRepository(db)
		res.AdminRepo = sqlrepo.NewAdminRepository(db)
	}

	if conf.Redis.Addr == "" {
		logger.Warn("redis address not set, using in-memory bell store and notifier")
		if res.BellStore == nil {
			res.BellStore = inmemdb.NewBellStore(inmemdb.Open())
		}
		res.Notifier = inmemdb.NewNotifier()
		return res, nil
	}

	rdb, err := redisstore.Open(ctx, conf)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	res.Redis = rdb
	res.BellStore = redisstore.NewBellStore(rdb, conf.Redis.Prefix)
	res.Cache = redisstore.NewScheduleCache(rdb, conf.Redis.Prefix)
	res.Notifier = redisstore.NewNotifier(rdb, conf.Redis.Prefix, logger)
	return res, nil
}

func newScheduleService(conf *core.Config, res *Resources, logger core.Logger, validate *validator.Validate) *schedule.Service {
	return schedule.NewService(
		schedule.Deps{
			Repo:     res.ScheduleRepo,
			Cache:    res.Cache,
			Notifier: res.Notifier,
			Logger:   logger,
			Validate: validate,
			Dataset: func() ([]schedule.Schedule, error) {
				return schedule.LoadDataset(appfs.FS, schedule.DefaultDatasetPath)
			},
		},
		schedule.Options{IDScope: schedule.ParseIDScope(conf.Schedule.BlockIDScope)},
	)
}

func newAdminService(res *Resources, validate *validator.Validate, conf *core.Config) *admin.Service {
	return admin.NewService(res.AdminRepo, validate, conf)
}

func newBellService(res *Resources, logger core.Logger, conf *core.Config) *bell.Service {
	return bell.NewService(res.BellStore, logger, conf)
}

func newMonitor(conf *core.Config, svc *schedule.Service, bellSvc *bell.Service, logger core.Logger) *display.Monitor {
	return display.NewMonitor(svc, bellSvc, logger, display.Options{
		HourFormat:   schedule.ParseHourFormat(conf.Schedule.HourFormat),
		TickInterval: conf.Schedule.TickInterval,
	})
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Validate:    p.Validate,
		Translator:  p.Translator,
		ScheduleSvc: p.ScheduleSvc,
		AdminSvc:    p.AdminSvc,
		BellSvc:     p.BellSvc,
		Monitor:     p.Monitor,
	})
}

// New returns a new dependency injection dig.Container
func New(newConfig ...func() *core.Config) *dig.Container {
	c := dig.New()

	confFunc := core.NewConfig
	if len(newConfig) > 0 {
		confFunc = newConfig[0]
	}

	must(c.Provide(confFunc))
	must(c.Provide(newZapLogger))
	must(c.Provide(newLogger))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newResources))
	must(c.Provide(newScheduleService))
	must(c.Provide(newAdminService))
	must(c.Provide(newBellService))
	must(c.Provide(newMonitor))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(fmt.Sprintf("failed to provide dependency: %v", err))
	}
}
