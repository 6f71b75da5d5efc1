package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mmynk/tripledger/internal/cache"
	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/metrics"
	"github.com/mmynk/tripledger/internal/storage"
	"github.com/mmynk/tripledger/pkg/api"
)

// memo is the cached part of a summary. It depends only on the snapshot, so
// trips with identical ledgers may share an entry.
type memo struct {
	Balances    []api.Balance     `json:"balances"`
	Settlements []api.Transaction `json:"settlements"`
	Stats       api.Stats         `json:"stats"`
}

// Summarizer computes trip summaries, memoizing them by snapshot
// fingerprint. Concurrent requests for the same fingerprint share one
// computation.
type Summarizer struct {
	cache   cache.Cache
	metrics *metrics.Metrics
	policy  calculator.SplitPolicy
	group   singleflight.Group
}

// NewSummarizer returns a Summarizer. A nil cache disables memoization.
func NewSummarizer(c cache.Cache, m *metrics.Metrics, policy calculator.SplitPolicy) *Summarizer {
	if c == nil {
		c = cache.Nop{}
	}
	return &Summarizer{cache: c, metrics: m, policy: policy}
}

// Summarize derives balances, the settlement plan, stats and budget usage
// from ledger.
func (s *Summarizer) Summarize(ctx context.Context, ledger *storage.Ledger) *api.Summary {
	snap := snapshotOf(ledger)
	fingerprint := snap.Fingerprint()
	key := s.policy.String() + ":" + fingerprint

	v, _, _ := s.group.Do(key, func() (any, error) {
		if m, ok := s.lookup(ctx, key); ok {
			return m, nil
		}
		m := s.compute(snap)
		s.store(ctx, key, m)
		return m, nil
	})
	m := v.(memo)

	return &api.Summary{
		TripID:      ledger.Trip.ID,
		Fingerprint: fingerprint,
		SplitPolicy: s.policy.String(),
		Balances:    m.Balances,
		Settlements: m.Settlements,
		Stats:       m.Stats,
		Budget: toAPIBudget(calculator.ComputeBudget(ledger.Trip.Budget, calculator.Stats{
			TotalExpenses: m.Stats.TotalExpenses,
		})),
	}
}

func (s *Summarizer) compute(snap calculator.Snapshot) memo {
	start := time.Now()
	sum := snap.Summarize(s.policy)
	s.metrics.SummaryComputed(time.Since(start), len(snap.Expenses)-sum.Stats.ExpenseCount, len(sum.Settlements))

	return memo{
		Balances:    toAPIBalances(sum.Balances),
		Settlements: toAPITransactions(sum.Settlements),
		Stats:       toAPIStats(sum.Stats),
	}
}

// lookup treats cache failures as misses; the summary can always be
// recomputed.
func (s *Summarizer) lookup(ctx context.Context, key string) (memo, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Summary cache lookup failed", "key", key, "error", err)
		s.metrics.CacheLookup("error")
		return memo{}, false
	}
	if !ok {
		s.metrics.CacheLookup("miss")
		return memo{}, false
	}

	var m memo
	if err := json.Unmarshal(data, &m); err != nil {
		slog.Warn("Discarding undecodable summary cache entry", "key", key, "error", err)
		s.metrics.CacheLookup("error")
		return memo{}, false
	}
	s.metrics.CacheLookup("hit")
	s.metrics.SummaryCached()
	return m, true
}

func (s *Summarizer) store(ctx context.Context, key string, m memo) {
	data, err := json.Marshal(m)
	if err != nil {
		slog.Warn("Failed to encode summary for cache", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		slog.Warn("Failed to cache summary", "key", key, "error", err)
	}
}
