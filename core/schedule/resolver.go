package schedule

import "time"

// afternoonStartHour is the fixed cut point between Morning and Afternoon.
const afternoonStartHour = 13

// Status describes where the resolved time falls.
type Status string

const (
	// StatusNoSchedule: no schedule matches the time-of-day and day type.
	StatusNoSchedule Status = "no_schedule"
	// StatusPending: the schedule is active but its first block has not started yet.
	StatusPending Status = "pending"
	// StatusInBlock: a block contains the current time.
	StatusInBlock Status = "in_block"
	// StatusElapsed: the schedule's last block has ended.
	StatusElapsed Status = "elapsed"
)

// TimedBlock is a Block with its computed boundaries.
type TimedBlock struct {
	Block
	StartMinutes int    `json:"-"`
	EndMinutes   int    `json:"-"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

// Contains reports whether minutes falls within [start, end).
func (tb TimedBlock) Contains(minutes int) bool {
	return tb.StartMinutes <= minutes && minutes < tb.EndMinutes
}

// TimedSchedule is a derived, time-stamped view of a Schedule.
type TimedSchedule struct {
	ID          int          `json:"id"`
	Description string       `json:"description"`
	TimeOfDay   TimeOfDay    `json:"timeOfDay"`
	Type        DayType      `json:"type"`
	StartTime   string       `json:"startTime"`
	Blocks      []TimedBlock `json:"blocks"`
}

// EndMinutes is the end of the last block, or 0 when the schedule has no blocks.
func (ts TimedSchedule) EndMinutes() int {
	if len(ts.Blocks) == 0 {
		return 0
	}
	return ts.Blocks[len(ts.Blocks)-1].EndMinutes
}

// Resolution is the outcome of resolving a point in time against the collection.
type Resolution struct {
	At         time.Time      `json:"at"`
	TimeOfDay  TimeOfDay      `json:"timeOfDay"`
	DayType    DayType        `json:"dayType"`
	Status     Status         `json:"status"`
	Schedule   *TimedSchedule `json:"schedule"`
	BlockIndex int            `json:"blockIndex"` // -1 when no block is current
}

// CurrentBlock returns the running block, if any.
func (r Resolution) CurrentBlock() (TimedBlock, bool) {
	if r.Schedule == nil || r.BlockIndex < 0 || r.BlockIndex >= len(r.Schedule.Blocks) {
		return TimedBlock{}, false
	}
	return r.Schedule.Blocks[r.BlockIndex], true
}

// Alias is the value published to the bell: the current block's alias, or FreeAlias.
func (r Resolution) Alias() Alias {
	if b, ok := r.CurrentBlock(); ok && b.Alias != "" {
		return b.Alias
	}
	return FreeAlias
}

// SameState reports whether two resolutions show the same schedule, block and status.
func (r Resolution) SameState(other Resolution) bool {
	if r.Status != other.Status || r.BlockIndex != other.BlockIndex ||
		r.TimeOfDay != other.TimeOfDay || r.DayType != other.DayType {
		return false
	}
	if (r.Schedule == nil) != (other.Schedule == nil) {
		return false
	}
	return r.Schedule == nil || r.Schedule.ID == other.Schedule.ID
}

// TimeOfDayAt returns Morning before 13:00 and Afternoon from 13:00 on.
func TimeOfDayAt(t time.Time) TimeOfDay {
	if t.Hour() < afternoonStartHour {
		return Morning
	}
	return Afternoon
}

// Find returns the first schedule matching tod and dt, in collection order.
func Find(schedules []Schedule, tod TimeOfDay, dt DayType) (Schedule, bool) {
	for _, s := range schedules {
		if s.TimeOfDay == tod && s.Type == dt {
			return s, true
		}
	}
	return Schedule{}, false
}

// Compute stamps every block with its boundaries, accumulating durations from the start time.
// The given schedule is left untouched.
func Compute(s Schedule, format ...HourFormat) TimedSchedule {
	ts := TimedSchedule{
		ID:          s.ID,
		Description: s.Description,
		TimeOfDay:   s.TimeOfDay,
		Type:        s.Type,
		StartTime:   s.StartTime,
		Blocks:      make([]TimedBlock, 0, len(s.Blocks)),
	}
	cursor := TimeToMinutes(s.StartTime)
	for _, b := range s.Blocks {
		end := cursor + int(b.Duration)
		ts.Blocks = append(ts.Blocks, TimedBlock{
			Block:        b,
			StartMinutes: cursor,
			EndMinutes:   end,
			Start:        MinutesToTime(cursor, format...),
			End:          MinutesToTime(end, format...),
		})
		cursor = end
	}
	return ts
}

// Resolve determines the active schedule and block for now. It has no side effects.
func Resolve(now time.Time, schedules []Schedule, settings Settings, format ...HourFormat) Resolution {
	tod := TimeOfDayAt(now)
	res := Resolution{
		At:         now,
		TimeOfDay:  tod,
		DayType:    settings.For(tod),
		Status:     StatusNoSchedule,
		BlockIndex: -1,
	}

	found, ok := Find(schedules, tod, res.DayType)
	if !ok {
		return res
	}
	ts := Compute(found, format...)

	current := ClockMinutes(now)
	for i, b := range ts.Blocks {
		if b.Contains(current) {
			res.Status = StatusInBlock
			res.Schedule = &ts
			res.BlockIndex = i
			return res
		}
	}

	if current >= ts.EndMinutes() {
		res.Status = StatusElapsed
		return res
	}
	res.Status = StatusPending
	res.Schedule = &ts
	return res
}
