package watchlist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"KWatch/internal/model"
)

// State is the on-disk shape of the watchlist.
type State struct {
	Items     []model.WatchItem `json:"items"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// LoadState reads the watchlist from a JSON file. ok is false if the file doesn't exist.
func LoadState(filePath string) (state *State, ok bool, err error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, false, nil
		}
		return nil, false, err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

// SaveState writes the watchlist to a JSON file via a temp file and rename.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
