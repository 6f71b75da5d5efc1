package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/tripledger/internal/storage"
	"github.com/mmynk/tripledger/pkg/api"
)

// Broker fans out "trip changed" notifications to in-process watchers.
//
// Each subscription holds at most one pending notification. A publish that
// finds one already pending is dropped, since the watcher will re-read the
// latest ledger anyway.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers interest in tripID. The returned function cancels the
// subscription and must be called exactly once.
func (b *Broker) Subscribe(tripID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	if b.subs[tripID] == nil {
		b.subs[tripID] = make(map[chan struct{}]struct{})
	}
	b.subs[tripID][ch] = struct{}{}
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[tripID], ch)
		if len(b.subs[tripID]) == 0 {
			delete(b.subs, tripID)
		}
	}
}

// Publish notifies every subscriber of tripID without blocking.
func (b *Broker) Publish(tripID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[tripID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of watchers of tripID.
func (b *Broker) Subscribers(tripID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[tripID])
}

// WatchTrip streams the trip's summary now and again after every change.
// Summaries identical to the last one sent are skipped. The stream ends
// when the client goes away or the trip is deleted.
func (s *TripService) WatchTrip(ctx context.Context, req *connect.Request[api.WatchTripRequest], stream *connect.ServerStream[api.WatchTripResponse]) error {
	tripID := req.Msg.TripID
	slog.Info("WatchTrip request received", "trip_id", tripID)

	// Subscribe before the first read so no change can slip in between.
	updates, cancel := s.broker.Subscribe(tripID)
	defer cancel()

	ledger, err := s.store.GetLedger(ctx, tripID)
	if err != nil {
		return fail("WatchTrip", err, "trip_id", tripID)
	}

	s.metrics.WatcherAdded()
	defer s.metrics.WatcherRemoved()

	last := s.summarizer.Summarize(ctx, ledger)
	if err := stream.Send(&api.WatchTripResponse{Summary: last}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("WatchTrip closed", "trip_id", tripID)
			return nil
		case <-updates:
		}

		ledger, err := s.store.GetLedger(ctx, tripID)
		if errors.Is(err, storage.ErrNotFound) {
			slog.Info("WatchTrip ended, trip deleted", "trip_id", tripID)
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fail("WatchTrip", err, "trip_id", tripID)
		}

		summary := s.summarizer.Summarize(ctx, ledger)
		if summary.Fingerprint == last.Fingerprint && summary.Budget == last.Budget {
			continue
		}
		if err := stream.Send(&api.WatchTripResponse{Summary: summary}); err != nil {
			return err
		}
		last = summary
	}
}
