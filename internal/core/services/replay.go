package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driven"
	"github.com/custodia-labs/streamtrack/internal/core/ports/driving"
	"github.com/custodia-labs/streamtrack/internal/logger"
)

// Ensure ReplayService implements the interface.
var _ driving.ReplayService = (*ReplayService)(nil)

// ReplayService feeds recorded connector output through a fresh tracker.
type ReplayService struct {
	trackers driving.TrackerFactory
	readers  driven.MessageReaderFactory
}

// NewReplayService creates a replay service.
func NewReplayService(trackers driving.TrackerFactory, readers driven.MessageReaderFactory) *ReplayService {
	return &ReplayService{
		trackers: trackers,
		readers:  readers,
	}
}

// replayCounters is shared by the reader goroutines.
type replayCounters struct {
	tracked     atomic.Int64
	trackErrors atomic.Int64
}

// Replay reads the source and destination output concurrently and tracks
// every message. Streams that are not terminal once both readers stop are
// forced to INCOMPLETE. A reader failure stops the other reader and is
// returned together with the summary.
func (s *ReplayService) Replay(ctx context.Context, req driving.ReplayRequest) (*driving.ReplayResult, error) {
	if err := req.Sync.Validate(); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	if req.Source == nil {
		return nil, fmt.Errorf("replay: %w: source output is required", domain.ErrInvalidInput)
	}

	logger.Section("Replay")
	logger.Info("replaying %s", req.Sync)

	tracker := s.trackers.Create(req.Sync)
	counters := &replayCounters{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.consume(gctx, tracker, domain.OriginSource, req.Source, counters)
	})
	if req.Destination != nil {
		g.Go(func() error {
			return s.consume(gctx, tracker, domain.OriginDestination, req.Destination, counters)
		})
	}
	readErr := g.Wait()

	result := &driving.ReplayResult{}
	if readErr != nil {
		result.Failed = true
		logger.Warn("replay of %s stopped: %v", req.Sync, readErr)
	}

	if err := tracker.ForceTerminal(ctx, domain.RunStateIncomplete); err != nil {
		counters.trackErrors.Add(1)
		logger.Warn("finalising %s: %v", req.Sync, err)
	}

	result.Streams = tracker.Statuses()
	result.MessagesTracked = int(counters.tracked.Load())
	result.TrackErrors = int(counters.trackErrors.Load())

	logger.Info("replayed %d messages across %d streams (%d errors)",
		result.MessagesTracked, len(result.Streams), result.TrackErrors)

	if readErr != nil {
		return result, fmt.Errorf("replay: %w", readErr)
	}
	return result, nil
}

func (s *ReplayService) consume(
	ctx context.Context,
	tracker driving.StreamStatusTracker,
	origin domain.MessageOrigin,
	r io.Reader,
	counters *replayCounters,
) error {
	reader := s.readers.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s output: %w", origin, err)
		}

		counters.tracked.Add(1)
		if err := tracker.Track(ctx, origin, msg); err != nil {
			counters.trackErrors.Add(1)
			logger.Warn("track %s message: %v", origin, err)
		}
	}
}
