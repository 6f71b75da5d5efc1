package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance below which a balance is treated as settled.
const Epsilon = 0.01

// epsilonCents is Epsilon expressed in cents.
const epsilonCents = 1

// Transaction represents a payment from one member to another.
type Transaction struct {
	From   string  // Person who pays (debtor)
	To     string  // Person who is paid (creditor)
	Amount float64 // Rounded to 2 decimal places
}

// party is a debtor or creditor during the sweep. remaining is always
// positive and in cents.
type party struct {
	member    string
	remaining int64
}

// ComputeSettlements converts net balances into pairwise payments.
//
// Algorithm:
// - Round every balance to cents once, half away from zero
// - Members within Epsilon of zero are settled and left out
// - Debtors and creditors keep the order of balances (trip member order)
// - Two-pointer sweep: pay min(debt, credit), advance whoever reaches zero
//
// Rounding members independently can leave the last debtor or creditor a
// few cents short; the sweep stops when either side runs out.
func ComputeSettlements(balances Balances) []Transaction {
	var debtors, creditors []party
	for _, mb := range merge(balances) {
		switch c := toCents(mb.Amount); {
		case c < -epsilonCents:
			debtors = append(debtors, party{member: mb.Member, remaining: -c})
		case c > epsilonCents:
			creditors = append(creditors, party{member: mb.Member, remaining: c})
		}
	}

	var transactions []Transaction
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := min(debtor.remaining, creditor.remaining)
		if amount > 0 {
			transactions = append(transactions, Transaction{
				From:   debtor.member,
				To:     creditor.member,
				Amount: fromCents(amount),
			})
		}

		debtor.remaining -= amount
		creditor.remaining -= amount

		if debtor.remaining < epsilonCents {
			i++
		}
		if creditor.remaining < epsilonCents {
			j++
		}
	}

	return transactions
}

// merge folds repeated members into their first position so that nobody
// can end up on both sides of the sweep.
func merge(balances Balances) Balances {
	out := make(Balances, 0, len(balances))
	index := make(map[string]int, len(balances))
	for _, mb := range balances {
		if i, ok := index[mb.Member]; ok {
			out[i].Amount += mb.Amount
			continue
		}
		index[mb.Member] = len(out)
		out = append(out, mb)
	}
	return out
}

// toCents rounds an amount to whole cents, half away from zero.
func toCents(amount float64) int64 {
	return toDecimal(amount).Shift(2).Round(0).IntPart()
}

// Round2 rounds an amount to 2 decimal places for presentation, half away
// from zero. Non-finite values round to 0.
func Round2(amount float64) float64 {
	return toDecimal(amount).Round(2).InexactFloat64()
}

func toDecimal(amount float64) decimal.Decimal {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(amount)
}

func fromCents(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}
