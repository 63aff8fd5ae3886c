package schedule_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/timeac/core/schedule"
	appfs "github.com/trezcool/timeac/fs"
	"github.com/trezcool/timeac/tests"
)

func TestLoadDataset_Bundled(t *testing.T) {
	validate, _ := testutil.NewValidator()

	schedules, err := LoadDataset(appfs.FS, DefaultDatasetPath)
	require.NoError(t, err)
	require.NoError(t, ValidateCollection(validate, schedules))

	// one schedule per time-of-day and day type
	for _, tod := range AllTimesOfDay {
		for _, dt := range []DayType{Normal, Special} {
			s, ok := Find(schedules, tod, dt)
			if assert.True(t, ok, "%s %s", tod, dt) {
				assert.NotEmpty(t, s.Blocks)
			}
		}
	}
}

func TestLoadDataset_Missing(t *testing.T) {
	_, err := LoadDataset(fstest.MapFS{}, "nope.json")
	assert.Error(t, err)
}

func TestParseDataset(t *testing.T) {
	array := `[
		{"id": 2, "description": "b", "timeOfDay": "Afternoon", "type": "Normal", "startTime": "13:00",
		 "blocks": [{"id": 1, "alias": 1, "name": "One", "duration": "45"}]},
		{"id": 1, "description": "a", "timeOfDay": "Morning", "type": "Normal", "startTime": "07:00", "blocks": []}
	]`
	keyed := `{
		"2": {"id": 2, "description": "b", "timeOfDay": "Afternoon", "type": "Normal", "startTime": "13:00",
		      "blocks": [{"id": 1, "alias": 1, "name": "One", "duration": "45"}]},
		"1": {"id": 1, "description": "a", "timeOfDay": "Morning", "type": "Normal", "startTime": "07:00", "blocks": []}
	}`
	yml := `
- id: 2
  description: b
  timeOfDay: Afternoon
  type: Normal
  startTime: "13:00"
  blocks:
    - id: 1
      alias: 1
      name: One
      duration: 45
- id: 1
  description: a
  timeOfDay: Morning
  type: Normal
  startTime: "07:00"
  blocks: []
`
	tests := []struct {
		name    string
		data    string
		ext     string
		wantIDs []int
	}{
		{name: "json array keeps order", data: array, ext: ".json", wantIDs: []int{2, 1}},
		{name: "keyed json sorted by id", data: keyed, ext: ".json", wantIDs: []int{1, 2}},
		{name: "yaml", data: yml, ext: ".yaml", wantIDs: []int{2, 1}},
		{name: "yml", data: yml, ext: ".YML", wantIDs: []int{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedules, err := ParseDataset([]byte(tt.data), tt.ext)
			require.NoError(t, err)

			var ids []int
			for _, s := range schedules {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)

			afternoon, ok := Find(schedules, Afternoon, Normal)
			require.True(t, ok)
			require.Len(t, afternoon.Blocks, 1)
			assert.Equal(t, Block{ID: 1, Alias: "1", Name: "One", Duration: 45}, afternoon.Blocks[0])
		})
	}
}

func TestParseDataset_Invalid(t *testing.T) {
	for _, tc := range []struct{ data, ext string }{
		{`[{"id": "x"}]`, ".json"},
		{`{"1": [1]}`, ".json"},
		{"- id: [1", ".yaml"},
	} {
		_, err := ParseDataset([]byte(tc.data), tc.ext)
		assert.Error(t, err, tc.data)
	}
}

func TestKeyByID(t *testing.T) {
	keyed := KeyByID(testutil.Collection())
	require.Len(t, keyed, 4)
	assert.Equal(t, Afternoon, keyed[3].TimeOfDay)
	assert.Equal(t, Special, keyed[4].Type)
}
