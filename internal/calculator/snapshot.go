package calculator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
)

// Snapshot is a complete, immutable view of one trip's ledger.
type Snapshot struct {
	Members  []string
	Expenses []Expense

	// Payments are settlements already made between members. They move
	// balances but are not spending, so they never show up in Stats.
	Payments []Transaction
}

// Summary is everything derived from a Snapshot.
type Summary struct {
	Balances    Balances
	Settlements []Transaction
	Stats       Stats
}

// Balances computes net balances over expenses and recorded payments. A
// payment from A to B counts as an expense paid by A and split with B only.
func (s Snapshot) Balances(policy SplitPolicy) Balances {
	expenses := s.Expenses
	if len(s.Payments) > 0 {
		expenses = make([]Expense, 0, len(s.Expenses)+len(s.Payments))
		expenses = append(expenses, s.Expenses...)
		for _, p := range s.Payments {
			expenses = append(expenses, Expense{
				Amount:       p.Amount,
				PaidBy:       p.From,
				SplitBetween: []string{p.To},
			})
		}
	}
	return ComputeBalancesWithPolicy(s.Members, expenses, policy)
}

// Summarize recomputes balances, the settlement plan and stats from scratch.
func (s Snapshot) Summarize(policy SplitPolicy) Summary {
	balances := s.Balances(policy)
	return Summary{
		Balances:    balances,
		Settlements: ComputeSettlements(balances),
		Stats:       ComputeStats(s.Expenses),
	}
}

// Fingerprint returns a content hash of the snapshot. Identical snapshots
// always produce the same fingerprint, so it is safe to key memoized
// summaries on it.
func (s Snapshot) Fingerprint() string {
	h := sha256.New()

	writeList(h, "members", s.Members)
	for _, e := range s.Expenses {
		fmt.Fprintf(h, "expense %q %s %q %q %q\n",
			e.ID, formatAmount(e.Amount), e.PaidBy, e.Category, e.Date)
		writeList(h, "split", e.SplitBetween)
		writeList(h, "created-with", e.MembersAtCreation)
	}
	for _, p := range s.Payments {
		fmt.Fprintf(h, "payment %q %q %s\n", p.From, p.To, formatAmount(p.Amount))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func writeList(h hash.Hash, label string, values []string) {
	fmt.Fprintf(h, "%s %d", label, len(values))
	for _, v := range values {
		fmt.Fprintf(h, " %q", v)
	}
	fmt.Fprintln(h)
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'g', -1, 64)
}
