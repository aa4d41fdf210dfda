package recorder

import (
	"time"

	"KWatch/internal/model"

	"github.com/google/uuid"
)

// Run describes one refresh of the whole watchlist.
type Run struct {
	ID         string
	Trigger    string // "CRON", "COMMAND", "API", "CLI"
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Failed     int
}

// NewRun starts a run record with a fresh id.
func NewRun(trigger string, started time.Time) *Run {
	return &Run{ID: uuid.NewString(), Trigger: trigger, StartedAt: started}
}

// Finish fills in the outcome counters from the readings.
func (r *Run) Finish(readings []model.Reading, finished time.Time) {
	r.FinishedAt = finished
	r.Total = len(readings)
	r.Failed = 0
	for _, rd := range readings {
		if !rd.Available {
			r.Failed++
		}
	}
}

// Recorder persists refresh runs and per-ticker readings for later review.
type Recorder interface {
	RecordRun(run *Run) error
	RecordReading(runID string, r *model.Reading) error
	History(symbol string, limit int) ([]model.Reading, error)
	Close() error
}
