package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/ports"
)

// SinkPipeline fans a briefing out to every registered sink.
type SinkPipeline struct {
	sinks   []ports.Sink
	metrics ports.RunMetrics
	logger  *slog.Logger
}

// NewSinkPipeline keeps sinks in registration order.
func NewSinkPipeline(sinks []ports.Sink, metrics ports.RunMetrics, logger *slog.Logger) *SinkPipeline {
	kept := make([]ports.Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &SinkPipeline{sinks: kept, metrics: metrics, logger: logging.OrDiscard(logger)}
}

// Names lists the registered sinks.
func (p *SinkPipeline) Names() []string {
	names := make([]string, 0, len(p.sinks))
	for _, s := range p.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Persist writes briefing to each registered sink whose name is enabled (nil enables all).
// Sinks are independent: a failure or panic in one is recorded as false and the rest still run.
func (p *SinkPipeline) Persist(ctx context.Context, briefing domain.Briefing, enabled map[string]bool) map[string]bool {
	results := make(map[string]bool, len(p.sinks))
	for _, sink := range p.sinks {
		name := sink.Name()
		if enabled != nil && !enabled[name] {
			continue
		}

		err := p.write(ctx, sink, briefing)
		results[name] = err == nil
		if p.metrics != nil {
			p.metrics.RecordSinkWrite(name, err == nil)
		}
		if err != nil {
			p.logger.Warn("sink failed", "sink", name, "briefing_id", briefing.ID, "error", err)
			continue
		}
		p.logger.Info("sink written", "sink", name, "briefing_id", briefing.ID)
	}
	return results
}

func (p *SinkPipeline) write(ctx context.Context, sink ports.Sink, briefing domain.Briefing) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink %s panicked: %v", sink.Name(), r)
		}
	}()
	return sink.Write(ctx, briefing)
}
