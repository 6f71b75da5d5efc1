package main

import (
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/tripledger/pkg/api"
)

func summaryCmd() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "summary <trip-id>",
		Short: "Show a trip's balances and settlement plan from a running server",
		Long: `Fetch a trip summary from a tripledger server. With --watch the summary
is printed again every time the trip changes, until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
			}
			client := api.NewTripServiceClient(http.DefaultClient, addr)
			ctx := cmd.Context()
			tripID := args[0]

			trip, err := client.GetTrip(ctx, connect.NewRequest(&api.GetTripRequest{TripID: tripID}))
			if err != nil {
				return fmt.Errorf("failed to get trip: %w", err)
			}
			title := trip.Msg.Trip.Name

			if !watch {
				resp, err := client.GetSummary(ctx, connect.NewRequest(&api.GetSummaryRequest{TripID: tripID}))
				if err != nil {
					return fmt.Errorf("failed to get summary: %w", err)
				}
				return renderSummary(cmd.OutOrStdout(), title, resp.Msg.Summary)
			}

			stream, err := client.WatchTrip(ctx, connect.NewRequest(&api.WatchTripRequest{TripID: tripID}))
			if err != nil {
				return fmt.Errorf("failed to watch trip: %w", err)
			}
			defer stream.Close()

			for stream.Receive() {
				if err := renderSummary(cmd.OutOrStdout(), title, stream.Msg().Summary); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Waiting for changes..."))
			}
			if err := stream.Err(); err != nil && ctx.Err() == nil {
				return fmt.Errorf("watch ended: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "server base URL (default http://localhost:<server.port>)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing the summary as the trip changes")

	return cmd
}
