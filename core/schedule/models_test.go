package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAlias_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Alias
		wantErr bool
	}{
		{name: "string", in: `"A"`, want: "A"},
		{name: "number", in: `1`, want: "1"},
		{name: "numeric string", in: `"7"`, want: "7"},
		{name: "empty", in: `""`, want: ""},
		{name: "null", in: `null`, want: ""},
		{name: "trimmed", in: `" R "`, want: "R"},
		{name: "object", in: `{}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Alias
			err := json.Unmarshal([]byte(tt.in), &a)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestAlias_UnmarshalYAML(t *testing.T) {
	var blk Block
	require.NoError(t, yaml.Unmarshal([]byte("id: 2\nalias: 3\nname: Period\nduration: 45\n"), &blk))
	assert.Equal(t, Block{ID: 2, Alias: "3", Name: "Period", Duration: 45}, blk)
}

func TestMinutes_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Minutes
		wantErr bool
	}{
		{name: "number", in: `45`, want: 45},
		{name: "numeric string", in: `"30"`, want: 30},
		{name: "decimal truncated", in: `12.9`, want: 12},
		{name: "empty string", in: `""`, want: 0},
		{name: "not a number", in: `"abc"`, wantErr: true},
		{name: "huge number", in: `1e30`, wantErr: true},
		{name: "huge numeric string", in: `"1e30"`, wantErr: true},
		{name: "negative", in: `-5`, wantErr: true},
		{name: "not finite", in: `"NaN"`, wantErr: true},
		{name: "max", in: `2147483647`, want: 2147483647},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Minutes
			err := json.Unmarshal([]byte(tt.in), &m)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestBlock_DecodesMixedAliases(t *testing.T) {
	var blocks []Block
	data := `[{"id":1,"alias":1,"name":"P1","duration":"45"},{"id":2,"alias":"R","name":"Recess","duration":20}]`
	require.NoError(t, json.Unmarshal([]byte(data), &blocks))
	assert.Equal(t, []Block{
		{ID: 1, Alias: "1", Name: "P1", Duration: 45},
		{ID: 2, Alias: "R", Name: "Recess", Duration: 20},
	}, blocks)
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, Normal, s.For(Morning))
	assert.Equal(t, Normal, s.For(Afternoon))

	s = s.Toggle(Morning)
	assert.Equal(t, Special, s.For(Morning))
	assert.Equal(t, Normal, s.For(Afternoon))

	s = s.Toggle(Morning)
	assert.Equal(t, Normal, s.For(Morning))

	// unset values fall back to Normal
	assert.Equal(t, Normal, Settings{}.For(Afternoon))
	assert.Equal(t, Special, Settings{}.Toggle(Afternoon).Afternoon)
}

func TestParseTimeOfDay(t *testing.T) {
	tod, ok := ParseTimeOfDay("morning")
	assert.True(t, ok)
	assert.Equal(t, Morning, tod)

	tod, ok = ParseTimeOfDay("Afternoon")
	assert.True(t, ok)
	assert.Equal(t, Afternoon, tod)

	_, ok = ParseTimeOfDay("evening")
	assert.False(t, ok)
}

func TestSchedule_Clone(t *testing.T) {
	s := Schedule{ID: 1, Blocks: []Block{{ID: 1, Duration: 10}}}
	c := s.Clone()
	c.Blocks[0].Duration = 99
	assert.Equal(t, Minutes(10), s.Blocks[0].Duration)
}
