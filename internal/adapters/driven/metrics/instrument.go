package metrics

import (
	"context"
	"time"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
)

// Ensure the decorators implement the interfaces.
var (
	_ driven.StreamStatusAPI       = (*instrumentedAPI)(nil)
	_ driven.StatusUpdatePublisher = (*instrumentedPublisher)(nil)
)

const (
	opCreate = "create"
	opUpdate = "update"
)

// InstrumentAPI wraps api so every call is counted and timed.
func (c *Collector) InstrumentAPI(api driven.StreamStatusAPI) driven.StreamStatusAPI {
	return &instrumentedAPI{next: api, collector: c}
}

// InstrumentPublisher wraps publisher so every notification is counted by
// run-state.
func (c *Collector) InstrumentPublisher(publisher driven.StatusUpdatePublisher) driven.StatusUpdatePublisher {
	return &instrumentedPublisher{next: publisher, collector: c}
}

type instrumentedAPI struct {
	next      driven.StreamStatusAPI
	collector *Collector
}

func (a *instrumentedAPI) CreateStreamStatus(
	ctx context.Context,
	req domain.StreamStatusCreateRequest,
) (*domain.StreamStatus, error) {
	start := time.Now()
	status, err := a.next.CreateStreamStatus(ctx, req)
	a.collector.observeCall(opCreate, start, err)
	return status, err
}

func (a *instrumentedAPI) UpdateStreamStatus(
	ctx context.Context,
	req domain.StreamStatusUpdateRequest,
) (*domain.StreamStatus, error) {
	start := time.Now()
	status, err := a.next.UpdateStreamStatus(ctx, req)
	a.collector.observeCall(opUpdate, start, err)
	return status, err
}

func (c *Collector) observeCall(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.apiCalls.WithLabelValues(operation, outcome).Inc()
	c.apiDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

type instrumentedPublisher struct {
	next      driven.StatusUpdatePublisher
	collector *Collector
}

func (p *instrumentedPublisher) Publish(ctx context.Context, event domain.StreamStatusUpdateEvent) error {
	p.collector.transitions.WithLabelValues(string(event.RunState)).Inc()
	if err := p.next.Publish(ctx, event); err != nil {
		p.collector.publishErrors.Inc()
		return err
	}
	return nil
}
