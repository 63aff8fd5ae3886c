package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/timeac/core"
	"github.com/trezcool/timeac/core/schedule"
)

const settingsKey = "scheduleSettings"

type (
	scheduleRow struct {
		ID          int    `db:"id"`
		Position    int    `db:"position"`
		Description string `db:"description"`
		TimeOfDay   string `db:"time_of_day"`
		DayType     string `db:"day_type"`
		StartTime   string `db:"start_time"`
	}

	blockRow struct {
		ScheduleID int    `db:"schedule_id"`
		Position   int    `db:"position"`
		BlockID    int    `db:"block_id"`
		Alias      string `db:"alias"`
		Name       string `db:"name"`
		Duration   int    `db:"duration"`
	}

	scheduleRepository struct {
		db core.DB
	}
)

var _ schedule.Repository = (*scheduleRepository)(nil)

func NewScheduleRepository(db core.DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) QueryAllSchedules(ctx context.Context) ([]schedule.Schedule, error) {
	var sRows []scheduleRow
	if err := repo.db.SelectContext(ctx, &sRows, `SELECT * FROM schedules ORDER BY position`); err != nil {
		return nil, errors.Wrap(err, "selecting schedules")
	}
	var bRows []blockRow
	if err := repo.db.SelectContext(ctx, &bRows, `SELECT * FROM blocks ORDER BY schedule_id, position`); err != nil {
		return nil, errors.Wrap(err, "selecting blocks")
	}

	blocks := make(map[int][]schedule.Block, len(sRows))
	for _, b := range bRows {
		blocks[b.ScheduleID] = append(blocks[b.ScheduleID], schedule.Block{
			ID:       b.BlockID,
			Alias:    schedule.Alias(b.Alias),
			Name:     b.Name,
			Duration: schedule.Minutes(b.Duration),
		})
	}

	schedules := make([]schedule.Schedule, 0, len(sRows))
	for _, s := range sRows {
		sBlocks := blocks[s.ID]
		if sBlocks == nil {
			sBlocks = []schedule.Block{}
		}
		schedules = append(schedules, schedule.Schedule{
			ID:          s.ID,
			Description: s.Description,
			TimeOfDay:   schedule.TimeOfDay(s.TimeOfDay),
			Type:        schedule.DayType(s.DayType),
			StartTime:   s.StartTime,
			Blocks:      sBlocks,
		})
	}
	return schedules, nil
}

func (repo *scheduleRepository) GetSettings(ctx context.Context) (schedule.Settings, error) {
	value, err := getSetting(ctx, repo.db, settingsKey)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return schedule.Settings{}, schedule.ErrNotFound
		}
		return schedule.Settings{}, err
	}
	var settings schedule.Settings
	if err = json.Unmarshal([]byte(value), &settings); err != nil {
		return schedule.Settings{}, errors.Wrap(err, "decoding settings")
	}
	return settings, nil
}

func (repo *scheduleRepository) SaveSettings(ctx context.Context, settings schedule.Settings) error {
	return saveSettings(ctx, repo.db, settings)
}

// Replace deletes every schedule and block then inserts the snapshot, in one transaction.
func (repo *scheduleRepository) Replace(ctx context.Context, snap schedule.Snapshot) error {
	return core.WithTx(ctx, repo.db, func(tx core.DBExecutor) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM blocks`); err != nil {
			return errors.Wrap(err, "deleting blocks")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedules`); err != nil {
			return errors.Wrap(err, "deleting schedules")
		}

		for pos, s := range snap.Schedules {
			row := scheduleRow{
				ID:          s.ID,
				Position:    pos,
				Description: s.Description,
				TimeOfDay:   string(s.TimeOfDay),
				DayType:     string(s.Type),
				StartTime:   s.StartTime,
			}
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO schedules (id, position, description, time_of_day, day_type, start_time)
				VALUES (:id, :position, :description, :time_of_day, :day_type, :start_time)`, row,
			); err != nil {
				return errors.Wrapf(err, "inserting schedule %d", s.ID)
			}

			for bPos, b := range s.Blocks {
				bRow := blockRow{
					ScheduleID: s.ID,
					Position:   bPos,
					BlockID:    b.ID,
					Alias:      string(b.Alias),
					Name:       b.Name,
					Duration:   int(b.Duration),
				}
				if _, err := tx.NamedExecContext(ctx, `
					INSERT INTO blocks (schedule_id, position, block_id, alias, name, duration)
					VALUES (:schedule_id, :position, :block_id, :alias, :name, :duration)`, bRow,
				); err != nil {
					return errors.Wrapf(err, "inserting block %d of schedule %d", b.ID, s.ID)
				}
			}
		}
		return saveSettings(ctx, tx, snap.Settings)
	})
}

func saveSettings(ctx context.Context, db core.DBExecutor, settings schedule.Settings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "encoding settings")
	}
	return setSetting(ctx, db, settingsKey, string(value))
}
