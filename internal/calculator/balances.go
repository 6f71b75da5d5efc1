package calculator

// MemberBalance is one member's net position.
type MemberBalance struct {
	Member string
	Amount float64 // Positive = owed money, Negative = owes money
}

// Balances holds net positions in a stable order: trip members first, in
// trip order, then anyone else touched by an expense in order of first
// appearance.
type Balances []MemberBalance

// Get returns the balance of member and whether the member is tracked.
func (b Balances) Get(member string) (float64, bool) {
	for _, mb := range b {
		if mb.Member == member {
			return mb.Amount, true
		}
	}
	return 0, false
}

// Sum returns the sum of every balance. It is zero, up to floating point
// noise, for any ledger built by ComputeBalances.
func (b Balances) Sum() float64 {
	var sum float64
	for _, mb := range b {
		sum += mb.Amount
	}
	return sum
}

// Map returns the balances keyed by member.
func (b Balances) Map() map[string]float64 {
	m := make(map[string]float64, len(b))
	for _, mb := range b {
		m[mb.Member] += mb.Amount
	}
	return m
}

// ComputeBalances reduces a trip's expenses into one net balance per member,
// splitting unassigned expenses with the current members.
func ComputeBalances(members []string, expenses []Expense) Balances {
	return ComputeBalancesWithPolicy(members, expenses, SplitAtEvaluation)
}

// ComputeBalancesWithPolicy is ComputeBalances with an explicit split policy.
//
// Algorithm:
// - Every member starts at zero
// - For each counted expense: payer is credited the full amount, each
//   splitter is debited amount/len(splitters)
// - No rounding; rounding only happens when planning settlements
func ComputeBalancesWithPolicy(members []string, expenses []Expense, policy SplitPolicy) Balances {
	balances := make(Balances, 0, len(members))
	index := make(map[string]int, len(members))

	track := func(member string) int {
		if i, ok := index[member]; ok {
			return i
		}
		index[member] = len(balances)
		balances = append(balances, MemberBalance{Member: member})
		return len(balances) - 1
	}

	for _, m := range members {
		track(m)
	}

	for _, e := range expenses {
		if !e.counted() {
			continue
		}

		payer := track(e.PaidBy)
		balances[payer].Amount += e.Amount

		splitters := policy.splitters(e, members)
		n := len(splitters)
		if n < 1 {
			n = 1
		}
		share := e.Amount / float64(n)
		for _, s := range splitters {
			i := track(s)
			balances[i].Amount -= share
		}
	}

	return balances
}
