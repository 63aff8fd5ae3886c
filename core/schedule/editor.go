package schedule

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrBlockNotFound    = errors.New("block not found")

	errNothingToEdit = errors.New("provide at least one of name, duration or alias")
)

const (
	newBlockDuration Minutes = 10
	newBlockName             = "New Block %d"
)

// IDScope decides which blocks are considered when numbering a new block.
type IDScope int

const (
	// ScheduleIDs numbers new blocks after the highest id of the target schedule.
	ScheduleIDs IDScope = iota
	// GlobalIDs numbers new blocks after the highest id across every schedule,
	// restarting at 1 when the target schedule is empty. Ids may then collide across schedules.
	GlobalIDs
)

// ParseIDScope maps the config value to an IDScope. Unknown values fall back to ScheduleIDs.
func ParseIDScope(s string) IDScope {
	if strings.EqualFold(strings.TrimSpace(s), "global") {
		return GlobalIDs
	}
	return ScheduleIDs
}

func (scope IDScope) String() string {
	if scope == GlobalIDs {
		return "global"
	}
	return "schedule"
}

func indexOf(schedules []Schedule, scheduleID int) int {
	for i, s := range schedules {
		if s.ID == scheduleID {
			return i
		}
	}
	return -1
}

// NextBlockID returns the id a block appended to the target schedule would get.
func NextBlockID(schedules []Schedule, scheduleID int, scope IDScope) (int, error) {
	idx := indexOf(schedules, scheduleID)
	if idx < 0 {
		return 0, ErrScheduleNotFound
	}
	target := schedules[idx]
	if len(target.Blocks) == 0 {
		return 1, nil
	}

	pool := []Schedule{target}
	if scope == GlobalIDs {
		pool = schedules
	}
	var max int
	for _, s := range pool {
		for _, b := range s.Blocks {
			if b.ID > max {
				max = b.ID
			}
		}
	}
	return max + 1, nil
}

// AddBlock appends a new default block to the target schedule.
func AddBlock(schedules []Schedule, scheduleID int, scope IDScope) ([]Schedule, Block, error) {
	id, err := NextBlockID(schedules, scheduleID, scope)
	if err != nil {
		return nil, Block{}, err
	}
	blk := Block{
		ID:       id,
		Alias:    "",
		Name:     fmt.Sprintf(newBlockName, id),
		Duration: newBlockDuration,
	}

	out := CloneAll(schedules)
	idx := indexOf(out, scheduleID)
	out[idx].Blocks = append(out[idx].Blocks, blk)
	return out, blk, nil
}

// DeleteBlock removes a block by id from the target schedule, preserving the order of the others.
func DeleteBlock(schedules []Schedule, scheduleID, blockID int) ([]Schedule, error) {
	idx := indexOf(schedules, scheduleID)
	if idx < 0 {
		return nil, ErrScheduleNotFound
	}
	if schedules[idx].BlockIndex(blockID) < 0 {
		return nil, ErrBlockNotFound
	}

	out := CloneAll(schedules)
	kept := make([]Block, 0, len(out[idx].Blocks))
	for _, b := range out[idx].Blocks {
		if b.ID != blockID {
			kept = append(kept, b)
		}
	}
	out[idx].Blocks = kept
	return out, nil
}

// EditBlock applies the set fields of edit to a block. The edit must already be validated.
func EditBlock(schedules []Schedule, scheduleID, blockID int, edit BlockEdit) ([]Schedule, error) {
	idx := indexOf(schedules, scheduleID)
	if idx < 0 {
		return nil, ErrScheduleNotFound
	}
	bIdx := schedules[idx].BlockIndex(blockID)
	if bIdx < 0 {
		return nil, ErrBlockNotFound
	}

	out := CloneAll(schedules)
	blk := &out[idx].Blocks[bIdx]
	if edit.Name != nil {
		blk.Name = *edit.Name
	}
	if edit.Duration != nil {
		blk.Duration = *edit.Duration
	}
	if edit.Alias != nil {
		blk.Alias = *edit.Alias
	}
	return out, nil
}

// SetStartTime changes the anchor time of the target schedule.
func SetStartTime(schedules []Schedule, scheduleID int, startTime string) ([]Schedule, error) {
	idx := indexOf(schedules, scheduleID)
	if idx < 0 {
		return nil, ErrScheduleNotFound
	}
	out := CloneAll(schedules)
	out[idx].StartTime = startTime
	return out, nil
}
