package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/pkg/api"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	owedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	owesStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderSummary prints balances, the settlement plan, spending stats and
// budget usage.
func renderSummary(w io.Writer, title string, s *api.Summary) error {
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Balances
	fmt.Fprintf(tw, "%s\t%s\n", headerStyle.Render("Member"), headerStyle.Render("Balance"))
	for _, b := range s.Balances {
		fmt.Fprintf(tw, "%s\t%s\n", b.Member, renderBalance(b.Amount))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	// Settlement plan
	fmt.Fprintln(w, headerStyle.Render("Settle up"))
	if len(s.Settlements) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  Everyone is settled."))
	}
	for _, tx := range s.Settlements {
		fmt.Fprintf(w, "  %s pays %s %s\n", tx.From, tx.To, models.FormatAmount(tx.Amount))
	}
	fmt.Fprintln(w)

	// Stats
	fmt.Fprintf(w, "%s %s in %d expenses\n",
		labelStyle.Render("Total spent:"), models.FormatAmount(s.Stats.TotalExpenses), s.Stats.ExpenseCount)
	if len(s.Stats.CategoryBreakdown) > 0 {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", headerStyle.Render("Category"), headerStyle.Render("Spent"), headerStyle.Render("Share"))
		stats := calculator.Stats{TotalExpenses: s.Stats.TotalExpenses, CategoryBreakdown: s.Stats.CategoryBreakdown}
		for _, c := range sortedByAmount(s.Stats.CategoryBreakdown) {
			fmt.Fprintf(tw, "%s\t%s\t%d%%\n", c, models.FormatAmount(s.Stats.CategoryBreakdown[c]), stats.CategoryShare(c))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	// Budget
	if s.Budget.Budget > 0 {
		line := fmt.Sprintf("%s %s of %s (%d%%)", labelStyle.Render("Budget:"),
			models.FormatAmount(s.Budget.Spent), models.FormatAmount(s.Budget.Budget), s.Budget.PercentUsed)
		if s.Budget.OverBudget {
			line += " " + warnStyle.Render("over by "+models.FormatAmount(-s.Budget.Remaining))
		}
		fmt.Fprintln(w, line)
	}

	return nil
}

func renderBalance(amount float64) string {
	switch {
	case amount >= 0.01:
		return owedStyle.Render("+" + models.FormatAmount(amount))
	case amount <= -0.01:
		return owesStyle.Render(models.FormatAmount(amount))
	default:
		return mutedStyle.Render("settled")
	}
}

// sortedByAmount returns the keys of m, largest value first, ties by name.
func sortedByAmount(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return strings.Compare(keys[i], keys[j]) < 0
	})
	return keys
}
