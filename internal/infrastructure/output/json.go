package output

import (
	"context"
	"encoding/json"
	"fmt"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/ports"
)

// JSONFileName is the machine-readable file for b.
func JSONFileName(b domain.Briefing) string {
	return filePrefix + b.ID + ".json"
}

// JSONSink stores the full briefing as indented JSON.
type JSONSink struct {
	store *FileStore
}

var _ ports.Sink = (*JSONSink)(nil)

// NewJSONSink builds the "json" sink.
func NewJSONSink(store *FileStore) *JSONSink {
	return &JSONSink{store: store}
}

// Name implements ports.Sink.
func (s *JSONSink) Name() string { return "json" }

// Write serializes b with ISO-8601 dates and string enums.
func (s *JSONSink) Write(ctx context.Context, b domain.Briefing) error {
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode briefing: %w", err)
	}
	return s.store.WriteFile(ctx, JSONFileName(b), append(raw, '\n'))
}
