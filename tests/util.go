package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/timeac/core"
	"github.com/trezcool/timeac/core/admin"
	"github.com/trezcool/timeac/core/schedule"
	"github.com/trezcool/timeac/storage/database"
)

// NewConfig returns the configuration used by tests: no debug, in-memory stores, fast ticks.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:   "TimeAC",
		Env:       "TEST",
		Build:     "test",
		TestMode:  true,
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			Address:            ":0",
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
			DisableReqLogs:     true,
		},
		Database: core.DatabaseConfig{Engine: database.EngineSQLite, Path: ":memory:"},
		Redis:    core.RedisConfig{Prefix: "timeac"},
		Schedule: core.ScheduleConfig{HourFormat: "elapsed", BlockIDScope: "schedule", TickInterval: 10 * time.Millisecond},
		Bell:     core.BellConfig{RingDuration: 50 * time.Millisecond},
		Admin:    core.AdminConfig{DefaultPassword: "1234"},
	}
}

// NewValidator returns a validator with every domain validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)
	return validate, translator
}

// PrepareDB opens a migrated in-memory sqlite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Block builds a block; alias defaults to the id.
func Block(id int, duration int, alias ...string) schedule.Block {
	a := schedule.Alias(fmt.Sprint(id))
	if len(alias) > 0 {
		a = schedule.Alias(alias[0])
	}
	return schedule.Block{ID: id, Alias: a, Name: fmt.Sprintf("Block %d", id), Duration: schedule.Minutes(duration)}
}

// Schedule builds a schedule whose blocks have the given durations and ids 1..n.
func Schedule(id int, tod schedule.TimeOfDay, dt schedule.DayType, start string, durations ...int) schedule.Schedule {
	blocks := make([]schedule.Block, 0, len(durations))
	for i, d := range durations {
		blocks = append(blocks, Block(i+1, d))
	}
	return schedule.Schedule{
		ID:          id,
		Description: fmt.Sprintf("%s %s", tod, dt),
		TimeOfDay:   tod,
		Type:        dt,
		StartTime:   start,
		Blocks:      blocks,
	}
}

// Collection is a small collection with one schedule per time-of-day and day type.
func Collection() []schedule.Schedule {
	return []schedule.Schedule{
		Schedule(1, schedule.Morning, schedule.Normal, "08:00", 10, 45, 45),
		Schedule(2, schedule.Morning, schedule.Special, "09:00", 30, 30),
		Schedule(3, schedule.Afternoon, schedule.Normal, "13:30", 45, 45),
		Schedule(4, schedule.Afternoon, schedule.Special, "14:00", 20),
	}
}

// At returns today's date at hh:mm in the local timezone.
func At(hh, mm int, sec ...int) time.Time {
	var s int
	if len(sec) > 0 {
		s = sec[0]
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hh, mm, s, 0, time.Local)
}

// Logger discards everything but records the messages, for assertions.
type Logger struct {
	mu       sync.Mutex
	messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, level+": "+msg)
}

// Messages returns the recorded "level: msg" lines.
func (l *Logger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.record("debug", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.record("info", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.record("warn", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.record("error", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.record("fatal", msg) }
