package schedule

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultDatasetPath is the location of the bundled dataset inside the app filesystem.
const DefaultDatasetPath = "assets/schedules.json"

// LoadDataset reads and decodes a schedule collection from fsys.
func LoadDataset(fsys fs.FS, path string) ([]Schedule, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading dataset %s", path)
	}
	return ParseDataset(data, filepath.Ext(path))
}

// ParseDataset decodes a collection encoded as JSON or YAML, chosen by ext.
// The JSON form may be either an array or an object keyed by schedule id.
func ParseDataset(data []byte, ext string) ([]Schedule, error) {
	var schedules []Schedule
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schedules); err != nil {
			return nil, errors.Wrap(err, "decoding yaml dataset")
		}
	default:
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '{' {
			return parseKeyedDataset(data)
		}
		if err := json.Unmarshal(data, &schedules); err != nil {
			return nil, errors.Wrap(err, "decoding json dataset")
		}
	}
	return schedules, nil
}

func parseKeyedDataset(data []byte) ([]Schedule, error) {
	var keyed map[string]Schedule
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, errors.Wrap(err, "decoding json dataset")
	}
	schedules := make([]Schedule, 0, len(keyed))
	for _, s := range keyed {
		schedules = append(schedules, s)
	}
	SortByID(schedules)
	return schedules, nil
}

// KeyByID returns the collection as a map keyed by schedule id, the layout shown by the import dry-run.
func KeyByID(schedules []Schedule) map[int]Schedule {
	keyed := make(map[int]Schedule, len(schedules))
	for _, s := range schedules {
		keyed[s.ID] = s
	}
	return keyed
}
