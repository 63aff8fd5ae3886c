package schedule

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TimeOfDay is the category a Schedule belongs to.
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"
	Afternoon TimeOfDay = "Afternoon"
)

// AllTimesOfDay lists the categories in display order.
var AllTimesOfDay = []TimeOfDay{Morning, Afternoon}

func (tod TimeOfDay) Valid() bool {
	return tod == Morning || tod == Afternoon
}

// ParseTimeOfDay parses a category name case-insensitively.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	for _, tod := range AllTimesOfDay {
		if strings.EqualFold(string(tod), strings.TrimSpace(s)) {
			return tod, true
		}
	}
	return "", false
}

// DayType selects the Normal or Special variant of a time-of-day.
type DayType string

const (
	Normal  DayType = "Normal"
	Special DayType = "Special"
)

func (dt DayType) Valid() bool {
	return dt == Normal || dt == Special
}

// Toggled returns the other day type.
func (dt DayType) Toggled() DayType {
	if dt == Normal {
		return Special
	}
	return Normal
}

// Alias is the short code identifying a Block to the bell hardware.
type Alias string

// FreeAlias is published when no block is running.
const FreeAlias Alias = "F"

func (a Alias) String() string { return string(a) }

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (a *Alias) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Alias(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "alias must be a string or a number")
	}
	*a = Alias(n.String())
	return nil
}

// UnmarshalYAML accepts scalar aliases of any type.
func (a *Alias) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*a = ""
	case string:
		*a = Alias(strings.TrimSpace(v))
	case int:
		*a = Alias(strconv.Itoa(v))
	case float64:
		*a = Alias(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return errors.Errorf("alias must be a string or a number, got %T", raw)
	}
	return nil
}

// Minutes is a block duration. It decodes from a JSON number or a numeric string.
type Minutes int

func (m *Minutes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*m = 0
			return nil
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return errors.Errorf("duration %s is not a number", data)
	}
	if !(f >= 0 && f <= math.MaxInt32) {
		return errors.Errorf("duration %s is out of range", data)
	}
	*m = Minutes(int(f))
	return nil
}

type Block struct {
	ID       int     `json:"id" yaml:"id" validate:"min=0"`
	Alias    Alias   `json:"alias" yaml:"alias" validate:"alias"`
	Name     string  `json:"name" yaml:"name"`
	Duration Minutes `json:"duration" yaml:"duration" validate:"gt=0"`
}

type Schedule struct {
	ID          int       `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	TimeOfDay   TimeOfDay `json:"timeOfDay" yaml:"timeOfDay" validate:"oneof=Morning Afternoon"`
	Type        DayType   `json:"type" yaml:"type" validate:"oneof=Normal Special"`
	StartTime   string    `json:"startTime" yaml:"startTime" validate:"required,clock"`
	Blocks      []Block   `json:"blocks" yaml:"blocks" validate:"dive"`
}

// Clone returns a deep copy of the schedule.
func (s Schedule) Clone() Schedule {
	blocks := make([]Block, len(s.Blocks))
	copy(blocks, s.Blocks)
	s.Blocks = blocks
	return s
}

// BlockIndex returns the position of the block with the given id, or -1.
func (s Schedule) BlockIndex(blockID int) int {
	for i, b := range s.Blocks {
		if b.ID == blockID {
			return i
		}
	}
	return -1
}

// CloneAll deep copies a collection.
func CloneAll(schedules []Schedule) []Schedule {
	if schedules == nil {
		return nil
	}
	out := make([]Schedule, len(schedules))
	for i, s := range schedules {
		out[i] = s.Clone()
	}
	return out
}

// Settings maps each time-of-day to its active day type.
type Settings struct {
	Morning   DayType `json:"Morning" validate:"oneof=Normal Special"`
	Afternoon DayType `json:"Afternoon" validate:"oneof=Normal Special"`
}

// DefaultSettings has every time-of-day on the Normal schedule.
func DefaultSettings() Settings {
	return Settings{Morning: Normal, Afternoon: Normal}
}

// For returns the day type configured for tod. Unset values fall back to Normal.
func (s Settings) For(tod TimeOfDay) DayType {
	var dt DayType
	switch tod {
	case Morning:
		dt = s.Morning
	case Afternoon:
		dt = s.Afternoon
	}
	if !dt.Valid() {
		return Normal
	}
	return dt
}

// With returns a copy of the settings with tod set to dt.
func (s Settings) With(tod TimeOfDay, dt DayType) Settings {
	switch tod {
	case Morning:
		s.Morning = dt
	case Afternoon:
		s.Afternoon = dt
	}
	return s
}

// Toggle flips the day type of tod between Normal and Special.
func (s Settings) Toggle(tod TimeOfDay) Settings {
	return s.With(tod, s.For(tod).Toggled())
}

// Snapshot is a consistent view of the collection and its settings.
type Snapshot struct {
	Schedules []Schedule `json:"schedules"`
	Settings  Settings   `json:"settings"`
}

// Clone deep copies the snapshot.
func (snap Snapshot) Clone() Snapshot {
	return Snapshot{Schedules: CloneAll(snap.Schedules), Settings: snap.Settings}
}

// BlockEdit defines what information may be provided to modify an existing Block.
type BlockEdit struct {
	Name     *string  `json:"name" validate:"omitempty,notblank"`
	Duration *Minutes `json:"duration" validate:"omitempty,gt=0"`
	Alias    *Alias   `json:"alias" validate:"omitempty,alias"`
}

func (be BlockEdit) IsEmpty() bool {
	return be.Name == nil && be.Duration == nil && be.Alias == nil
}

// SortByID orders the collection by schedule id, in place.
func SortByID(schedules []Schedule) {
	sort.SliceStable(schedules, func(i, j int) bool { return schedules[i].ID < schedules[j].ID })
}
