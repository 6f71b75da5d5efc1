package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/service"
	"github.com/mmynk/tripledger/internal/storage"
	"github.com/mmynk/tripledger/pkg/api"
)

func settleCmd() *cobra.Command {
	var policy string

	cmd := &cobra.Command{
		Use:   "settle <ledger.json>",
		Short: "Settle a trip from an exported ledger file",
		Long: `Read a trip ledger as returned by the GetTrip RPC (trip, expenses and
settlements) and print everyone's balance, spending stats and the payments
that settle the trip. Use "-" to read from stdin.

No server or database is needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if policy == "" {
				policy = cfg.Ledger.SplitPolicy
			}
			p, err := calculator.ParseSplitPolicy(policy)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open ledger: %w", err)
				}
				defer f.Close()
				in = f
			}

			return runSettle(cmd, in, p)
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "split policy for unsplit expenses: evaluation or creation (default from config)")

	return cmd
}

func runSettle(cmd *cobra.Command, in io.Reader, policy calculator.SplitPolicy) error {
	var export api.GetTripResponse
	if err := json.NewDecoder(in).Decode(&export); err != nil {
		return fmt.Errorf("failed to decode ledger: %w", err)
	}
	if export.Trip == nil {
		return errors.New("ledger has no trip")
	}

	ledger := ledgerFromExport(&export)
	summary := service.NewSummarizer(nil, nil, policy).Summarize(cmd.Context(), ledger)

	title := export.Trip.Name
	if title == "" {
		title = "Trip"
	}
	return renderSummary(cmd.OutOrStdout(), title, summary)
}

// ledgerFromExport converts a GetTrip response back into a stored ledger.
func ledgerFromExport(e *api.GetTripResponse) *storage.Ledger {
	trip := &models.Trip{
		ID:          e.Trip.ID,
		Name:        e.Trip.Name,
		Destination: e.Trip.Destination,
		Budget:      e.Trip.Budget,
		Archived:    e.Trip.Archived,
	}
	for _, m := range e.Trip.Members {
		trip.Members = append(trip.Members, models.Member{Name: m.Name, Email: m.Email, Role: models.Role(m.Role)})
	}

	ledger := &storage.Ledger{Trip: trip}
	for _, x := range e.Expenses {
		ledger.Expenses = append(ledger.Expenses, &models.Expense{
			ID:                x.ID,
			TripID:            x.TripID,
			Title:             x.Title,
			Amount:            x.Amount,
			PaidBy:            x.PaidBy,
			SplitBetween:      x.SplitBetween,
			MembersAtCreation: x.MembersAtCreation,
			Category:          x.Category,
			Description:       x.Description,
			Date:              x.Date,
			CreatedAt:         x.CreatedAt,
		})
	}
	for _, s := range e.Settlements {
		ledger.Settlements = append(ledger.Settlements, &models.Settlement{
			ID:         s.ID,
			TripID:     s.TripID,
			FromMember: s.From,
			ToMember:   s.To,
			Amount:     s.Amount,
			Note:       s.Note,
			CreatedAt:  s.CreatedAt,
		})
	}
	return ledger
}
