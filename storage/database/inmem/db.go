package inmemdb

import (
	"sync"

	"github.com/trezcool/timeac/core/bell"
	"github.com/trezcool/timeac/core/schedule"
)

type (
	// DB is a process-local stand-in for every store, used in tests and when no database is configured.
	DB struct {
		schedule *scheduleTable
		settings *settingsTable
		bell     *bellTable
	}

	scheduleTable struct {
		mutex sync.RWMutex
		table []schedule.Schedule
	}

	settingsTable struct {
		mutex    sync.RWMutex
		settings *schedule.Settings
		password []byte
	}

	bellTable struct {
		mutex    sync.RWMutex
		alias    *string
		controls bell.Controls
	}
)

func Open() *DB {
	return &DB{
		schedule: &scheduleTable{},
		settings: &settingsTable{},
		bell:     &bellTable{controls: bell.DefaultControls()},
	}
}
