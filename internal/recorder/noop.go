package recorder

import "KWatch/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *Run) error                           { return nil }
func (n *NoopRecorder) RecordReading(_ string, _ *model.Reading) error   { return nil }
func (n *NoopRecorder) History(_ string, _ int) ([]model.Reading, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                     { return nil }
