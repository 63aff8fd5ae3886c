package schedule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/timeac/core"
	. "github.com/trezcool/timeac/core/schedule"
	"github.com/trezcool/timeac/tests"
)

func TestValidateCollection(t *testing.T) {
	validate, translator := testutil.NewValidator()

	valid := testutil.Collection()
	require.NoError(t, ValidateCollection(validate, valid))

	tests := []struct {
		name      string
		mutate    func(c []Schedule) []Schedule
		wantField string
	}{
		{
			name:      "bad time of day",
			mutate:    func(c []Schedule) []Schedule { c[0].TimeOfDay = "Evening"; return c },
			wantField: "timeOfDay",
		},
		{
			name:      "bad day type",
			mutate:    func(c []Schedule) []Schedule { c[0].Type = "Holiday"; return c },
			wantField: "type",
		},
		{
			name:      "bad start time",
			mutate:    func(c []Schedule) []Schedule { c[0].StartTime = "8am"; return c },
			wantField: "startTime",
		},
		{
			name:      "blank start time",
			mutate:    func(c []Schedule) []Schedule { c[0].StartTime = "  "; return c },
			wantField: "startTime",
		},
		{
			name:      "zero duration",
			mutate:    func(c []Schedule) []Schedule { c[0].Blocks[1].Duration = 0; return c },
			wantField: "duration",
		},
		{
			name:      "alias with symbols",
			mutate:    func(c []Schedule) []Schedule { c[0].Blocks[0].Alias = "!?"; return c },
			wantField: "alias",
		},
		{
			name:      "alias too long",
			mutate:    func(c []Schedule) []Schedule { c[2].Blocks[1].Alias = "AB"; return c },
			wantField: "alias",
		},
		{
			name:      "duplicate schedule id",
			mutate:    func(c []Schedule) []Schedule { c[1].ID = 1; return c },
			wantField: "id",
		},
		{
			name:      "duplicate block id",
			mutate:    func(c []Schedule) []Schedule { c[0].Blocks[2].ID = 1; return c },
			wantField: "blocks",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCollection(validate, tt.mutate(testutil.Collection()))
			require.Error(t, err)

			if vErrs, ok := err.(validator.ValidationErrors); ok {
				fields := core.TranslateValidationErrors(vErrs, translator)
				assert.Contains(t, fields, tt.wantField)
				return
			}
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.NotEmpty(t, vErr.Fields)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
		})
	}
}

func TestValidateCollection_CleansStrings(t *testing.T) {
	validate, _ := testutil.NewValidator()
	c := testutil.Collection()
	c[0].Description = "  Morning Normal "
	c[0].StartTime = " 08:00 "
	c[0].Blocks[0].Name = " Roll call\t"

	require.NoError(t, ValidateCollection(validate, c))
	assert.Equal(t, "Morning Normal", c[0].Description)
	assert.Equal(t, "08:00", c[0].StartTime)
	assert.Equal(t, "Roll call", c[0].Blocks[0].Name)
}

func TestValidateCollection_Empty(t *testing.T) {
	validate, _ := testutil.NewValidator()
	assert.NoError(t, ValidateCollection(validate, nil))
}

func TestValidateEdit(t *testing.T) {
	validate, translator := testutil.NewValidator()
	str := func(s string) *string { return &s }
	mins := func(m int) *Minutes { v := Minutes(m); return &v }
	alias := func(a string) *Alias { v := Alias(a); return &v }

	tests := []struct {
		name      string
		edit      BlockEdit
		wantField string
		wantMsg   string
	}{
		{name: "name", edit: BlockEdit{Name: str("Maths")}},
		{name: "empty alias allowed", edit: BlockEdit{Alias: alias("")}},
		{name: "digit alias", edit: BlockEdit{Alias: alias("7")}},
		{name: "blank name", edit: BlockEdit{Name: str("   ")}, wantField: "name", wantMsg: "this field cannot be blank"},
		{name: "zero duration", edit: BlockEdit{Duration: mins(0)}, wantField: "duration"},
		{name: "negative duration", edit: BlockEdit{Duration: mins(-5)}, wantField: "duration"},
		{
			name: "long alias", edit: BlockEdit{Alias: alias("AB")},
			wantField: "alias", wantMsg: "only a single alphanumeric character is allowed",
		},
		{
			name: "symbol alias", edit: BlockEdit{Alias: alias("#")},
			wantField: "alias", wantMsg: "only a single alphanumeric character is allowed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edit := tt.edit
			err := ValidateEdit(validate, &edit)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			fields := core.TranslateValidationErrors(vErrs, translator)
			require.Contains(t, fields, tt.wantField)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, fields[tt.wantField])
			}
		})
	}
}

func TestValidateEdit_Empty(t *testing.T) {
	validate, _ := testutil.NewValidator()
	err := ValidateEdit(validate, &BlockEdit{})
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
}

func TestValidateEdit_TrimsAlias(t *testing.T) {
	validate, _ := testutil.NewValidator()
	a := Alias(" R ")
	edit := BlockEdit{Alias: &a}
	require.NoError(t, ValidateEdit(validate, &edit))
	assert.Equal(t, Alias("R"), *edit.Alias)
}

func TestStartTimeUpdate_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	upd := StartTimeUpdate{StartTime: " 07:15 "}
	require.NoError(t, upd.Validate(validate))
	assert.Equal(t, "07:15", upd.StartTime)

	for _, bad := range []string{"", "7:15", "24:00", "07:60", "noon"} {
		upd := StartTimeUpdate{StartTime: bad}
		assert.Error(t, upd.Validate(validate), bad)
	}
}
