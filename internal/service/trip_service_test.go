package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage"
	"github.com/mmynk/tripledger/internal/storage/sqlite"
	"github.com/mmynk/tripledger/pkg/api"
)

// setupTestServer creates a test server backed by a fresh SQLite database.
func setupTestServer(t *testing.T, opts ...Option) *api.TripServiceClient {
	t.Helper()
	return serveStore(t, newTestStore(t), opts...)
}

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// serveStore serves a TripService over store and returns a client for it.
func serveStore(t *testing.T, store storage.Store, opts ...Option) *api.TripServiceClient {
	t.Helper()

	svc := NewTripService(store, opts...)
	path, handler := api.NewTripServiceHandler(svc)

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return api.NewTripServiceClient(http.DefaultClient, server.URL)
}

func members(names ...string) []api.Member {
	out := make([]api.Member, len(names))
	for i, n := range names {
		out[i] = api.Member{Name: n}
	}
	return out
}

func createTrip(t *testing.T, client *api.TripServiceClient, req *api.CreateTripRequest) *api.Trip {
	t.Helper()
	resp, err := client.CreateTrip(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	return resp.Msg.Trip
}

func addExpense(t *testing.T, client *api.TripServiceClient, req *api.AddExpenseRequest) *api.Expense {
	t.Helper()
	resp, err := client.AddExpense(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func getSummary(t *testing.T, client *api.TripServiceClient, tripID string) *api.Summary {
	t.Helper()
	resp, err := client.GetSummary(context.Background(), connect.NewRequest(&api.GetSummaryRequest{TripID: tripID}))
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	return resp.Msg.Summary
}

// createGoaTrip sets up four friends who spent 30000 in total.
func createGoaTrip(t *testing.T, client *api.TripServiceClient) *api.Trip {
	t.Helper()
	trip := createTrip(t, client, &api.CreateTripRequest{
		Destination: "Goa",
		Budget:      40000,
		Members:     members("You", "Rahul", "Neha", "Amit"),
	})
	for _, e := range []api.AddExpenseRequest{
		{Title: "Seafood dinner", Amount: "4000", PaidBy: "Amit", Category: "Food"},
		{Title: "Villa", Amount: "20000", PaidBy: "You", Category: "Stay"},
		{Title: "Scooters", Amount: "2000", PaidBy: "Rahul", Category: "Travel"},
		{Title: "Brunch", Amount: "4000", PaidBy: "Neha", Category: "Food"},
	} {
		e.TripID = trip.ID
		addExpense(t, client, &e)
	}
	return trip
}

func balanceOf(s *api.Summary, member string) (float64, bool) {
	for _, b := range s.Balances {
		if b.Member == member {
			return b.Amount, true
		}
	}
	return 0, false
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}

func TestCreateTrip(t *testing.T) {
	client := setupTestServer(t)

	trip := createTrip(t, client, &api.CreateTripRequest{
		Destination: "Goa",
		Members:     members("You", "Rahul"),
	})

	if trip.ID == "" {
		t.Error("expected generated trip ID")
	}
	if trip.Name != "Trip to Goa" {
		t.Errorf("expected generated name 'Trip to Goa', got %q", trip.Name)
	}
	if len(trip.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(trip.Members))
	}
	if trip.Members[0].Role != "owner" || trip.Members[1].Role != "member" {
		t.Errorf("unexpected roles: %+v", trip.Members)
	}
	if trip.CreatedAt == 0 {
		t.Error("expected CreatedAt to be set")
	}
}

func TestCreateTrip_InvalidArgument(t *testing.T) {
	client := setupTestServer(t)

	tests := []struct {
		name string
		req  *api.CreateTripRequest
	}{
		{name: "no members", req: &api.CreateTripRequest{Name: "Empty"}},
		{name: "duplicate member", req: &api.CreateTripRequest{Members: members("Amit", "amit")}},
		{name: "blank member", req: &api.CreateTripRequest{Members: members("Amit", "")}},
		{name: "negative budget", req: &api.CreateTripRequest{Budget: -1, Members: members("Amit")}},
		{name: "bad email", req: &api.CreateTripRequest{Members: []api.Member{{Name: "Amit", Email: "nope"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateTrip(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestGetTrip(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)

	resp, err := client.GetTrip(context.Background(), connect.NewRequest(&api.GetTripRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatalf("GetTrip failed: %v", err)
	}

	if resp.Msg.Trip.Name != "Trip to Goa" {
		t.Errorf("expected name 'Trip to Goa', got %q", resp.Msg.Trip.Name)
	}
	if len(resp.Msg.Expenses) != 4 {
		t.Fatalf("expected 4 expenses, got %d", len(resp.Msg.Expenses))
	}
	// Insertion order
	if resp.Msg.Expenses[0].Title != "Seafood dinner" || resp.Msg.Expenses[3].Title != "Brunch" {
		t.Errorf("expenses out of order: %+v", resp.Msg.Expenses)
	}
	if len(resp.Msg.Settlements) != 0 {
		t.Errorf("expected no settlements, got %d", len(resp.Msg.Settlements))
	}
}

func TestGetTrip_NotFound(t *testing.T) {
	client := setupTestServer(t)

	_, err := client.GetTrip(context.Background(), connect.NewRequest(&api.GetTripRequest{TripID: "non-existent-id"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListTrips(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	goa := createTrip(t, client, &api.CreateTripRequest{Destination: "Goa", Members: members("You")})
	createTrip(t, client, &api.CreateTripRequest{Destination: "Manali", Members: members("You")})

	if _, err := client.ArchiveTrip(ctx, connect.NewRequest(&api.ArchiveTripRequest{TripID: goa.ID, Archived: true})); err != nil {
		t.Fatalf("ArchiveTrip failed: %v", err)
	}

	resp, err := client.ListTrips(ctx, connect.NewRequest(&api.ListTripsRequest{}))
	if err != nil {
		t.Fatalf("ListTrips failed: %v", err)
	}
	if len(resp.Msg.Trips) != 1 || resp.Msg.Trips[0].Name != "Trip to Manali" {
		t.Errorf("expected only the active trip, got %+v", resp.Msg.Trips)
	}

	resp, err = client.ListTrips(ctx, connect.NewRequest(&api.ListTripsRequest{IncludeArchived: true}))
	if err != nil {
		t.Fatalf("ListTrips failed: %v", err)
	}
	if len(resp.Msg.Trips) != 2 {
		t.Errorf("expected 2 trips including archived, got %d", len(resp.Msg.Trips))
	}
}

func TestUpdateTrip(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)

	resp, err := client.UpdateTrip(context.Background(), connect.NewRequest(&api.UpdateTripRequest{
		TripID:      trip.ID,
		Destination: "North Goa",
		Budget:      25000,
	}))
	if err != nil {
		t.Fatalf("UpdateTrip failed: %v", err)
	}
	if resp.Msg.Trip.Name != "Trip to Goa" {
		t.Errorf("empty name should keep the current one, got %q", resp.Msg.Trip.Name)
	}
	if resp.Msg.Trip.Destination != "North Goa" {
		t.Errorf("expected destination 'North Goa', got %q", resp.Msg.Trip.Destination)
	}

	summary := getSummary(t, client, trip.ID)
	if !summary.Budget.OverBudget || summary.Budget.Remaining != -5000 {
		t.Errorf("expected 5000 over budget, got %+v", summary.Budget)
	}
}

func TestDeleteTrip(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	trip := createGoaTrip(t, client)

	if _, err := client.DeleteTrip(ctx, connect.NewRequest(&api.DeleteTripRequest{TripID: trip.ID})); err != nil {
		t.Fatalf("DeleteTrip failed: %v", err)
	}

	_, err := client.GetSummary(ctx, connect.NewRequest(&api.GetSummaryRequest{TripID: trip.ID}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = client.DeleteTrip(ctx, connect.NewRequest(&api.DeleteTripRequest{TripID: trip.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGetSummary(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)

	summary := getSummary(t, client, trip.ID)

	if summary.TripID != trip.ID {
		t.Errorf("expected trip ID %s, got %s", trip.ID, summary.TripID)
	}
	if summary.Fingerprint == "" {
		t.Error("expected a fingerprint")
	}
	if summary.SplitPolicy != "evaluation" {
		t.Errorf("expected evaluation policy, got %q", summary.SplitPolicy)
	}

	wantBalances := []api.Balance{
		{Member: "You", Amount: 12500},
		{Member: "Rahul", Amount: -5500},
		{Member: "Neha", Amount: -3500},
		{Member: "Amit", Amount: -3500},
	}
	if !reflect.DeepEqual(summary.Balances, wantBalances) {
		t.Errorf("Balances = %+v, want %+v", summary.Balances, wantBalances)
	}

	wantPlan := []api.Transaction{
		{From: "Rahul", To: "You", Amount: 5500},
		{From: "Neha", To: "You", Amount: 3500},
		{From: "Amit", To: "You", Amount: 3500},
	}
	if !reflect.DeepEqual(summary.Settlements, wantPlan) {
		t.Errorf("Settlements = %+v, want %+v", summary.Settlements, wantPlan)
	}

	if summary.Stats.TotalExpenses != 30000 || summary.Stats.ExpenseCount != 4 {
		t.Errorf("unexpected stats: %+v", summary.Stats)
	}
	if summary.Stats.CategoryBreakdown["Food"] != 8000 {
		t.Errorf("Food: expected 8000, got %v", summary.Stats.CategoryBreakdown["Food"])
	}
	if summary.Stats.MemberSpending["You"] != 20000 {
		t.Errorf("You spent: expected 20000, got %v", summary.Stats.MemberSpending["You"])
	}

	wantBudget := api.BudgetUsage{Budget: 40000, Spent: 30000, Remaining: 10000, PercentUsed: 75}
	if summary.Budget != wantBudget {
		t.Errorf("Budget = %+v, want %+v", summary.Budget, wantBudget)
	}
}

func TestGetSummary_MissingTripID(t *testing.T) {
	client := setupTestServer(t)

	_, err := client.GetSummary(context.Background(), connect.NewRequest(&api.GetSummaryRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestGetSummary_EmptyTrip(t *testing.T) {
	client := setupTestServer(t)
	trip := createTrip(t, client, &api.CreateTripRequest{Members: members("You", "Rahul")})

	summary := getSummary(t, client, trip.ID)

	if len(summary.Settlements) != 0 {
		t.Errorf("expected no settlements, got %+v", summary.Settlements)
	}
	for _, b := range summary.Balances {
		if b.Amount != 0 {
			t.Errorf("%s: expected zero balance, got %v", b.Member, b.Amount)
		}
	}
	if summary.Stats.ExpenseCount != 0 || summary.Budget.PercentUsed != 0 {
		t.Errorf("unexpected stats for empty trip: %+v %+v", summary.Stats, summary.Budget)
	}
}

func TestAddExpense(t *testing.T) {
	client := setupTestServer(t)
	trip := createTrip(t, client, &api.CreateTripRequest{Members: members("You", "Rahul")})

	expense := addExpense(t, client, &api.AddExpenseRequest{
		TripID: trip.ID,
		Amount: "12,50",
		PaidBy: "You",
		Date:   "2024-12-28",
	})

	if expense.ID == "" {
		t.Error("expected generated expense ID")
	}
	if expense.Amount != 12.5 {
		t.Errorf("expected amount 12.5, got %v", expense.Amount)
	}
	if expense.Category != "Other" || expense.Title != "Other" {
		t.Errorf("expected default category and title, got %q / %q", expense.Category, expense.Title)
	}
}

func TestAddExpense_InvalidArgument(t *testing.T) {
	client := setupTestServer(t)
	trip := createTrip(t, client, &api.CreateTripRequest{Members: members("You", "Rahul")})

	tests := []struct {
		name string
		req  api.AddExpenseRequest
	}{
		{name: "zero amount", req: api.AddExpenseRequest{Amount: "0", PaidBy: "You"}},
		{name: "negative amount", req: api.AddExpenseRequest{Amount: "-10", PaidBy: "You"}},
		{name: "not a number", req: api.AddExpenseRequest{Amount: "lots", PaidBy: "You"}},
		{name: "no payer", req: api.AddExpenseRequest{Amount: "10"}},
		{name: "unknown payer", req: api.AddExpenseRequest{Amount: "10", PaidBy: "Priya"}},
		{name: "unknown splitter", req: api.AddExpenseRequest{Amount: "10", PaidBy: "You", SplitBetween: []string{"You", "Priya"}}},
		{name: "bad date", req: api.AddExpenseRequest{Amount: "10", PaidBy: "You", Date: "28/12/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.TripID = trip.ID
			_, err := client.AddExpense(context.Background(), connect.NewRequest(&req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestAddExpense_TripNotFound(t *testing.T) {
	client := setupTestServer(t)

	_, err := client.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{
		TripID: "missing",
		Amount: "10",
		PaidBy: "You",
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestUpdateExpense(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)
	ctx := context.Background()

	taxi := addExpense(t, client, &api.AddExpenseRequest{
		TripID: trip.ID, Title: "Taxi", Amount: "400", PaidBy: "Rahul", Category: "Travel",
	})

	resp, err := client.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID:    taxi.ID,
		Title:        "Taxi to airport",
		Amount:       "600",
		PaidBy:       "Rahul",
		SplitBetween: []string{"Rahul", "Neha"},
		Category:     "Travel",
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if resp.Msg.Expense.Amount != 600 || resp.Msg.Expense.CreatedAt != taxi.CreatedAt {
		t.Errorf("unexpected updated expense: %+v", resp.Msg.Expense)
	}

	summary := getSummary(t, client, trip.ID)
	if summary.Stats.TotalExpenses != 30600 {
		t.Errorf("expected total 30600, got %v", summary.Stats.TotalExpenses)
	}
	// Rahul: -5500 + 600 - 300
	if rahul, _ := balanceOf(summary, "Rahul"); math.Abs(rahul-(-5200)) > 0.001 {
		t.Errorf("Rahul: expected -5200, got %v", rahul)
	}

	_, err = client.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID: "missing", Amount: "1", PaidBy: "You",
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestDeleteExpense(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)
	ctx := context.Background()

	extra := addExpense(t, client, &api.AddExpenseRequest{TripID: trip.ID, Amount: "999", PaidBy: "Neha"})
	before := getSummary(t, client, trip.ID)

	if _, err := client.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: extra.ID})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}

	after := getSummary(t, client, trip.ID)
	if after.Stats.ExpenseCount != 4 {
		t.Errorf("expected 4 expenses after delete, got %d", after.Stats.ExpenseCount)
	}
	if after.Fingerprint == before.Fingerprint {
		t.Error("fingerprint should change when an expense is deleted")
	}

	_, err := client.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: extra.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestRecordSettlement(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)
	ctx := context.Background()

	resp, err := client.RecordSettlement(ctx, connect.NewRequest(&api.RecordSettlementRequest{
		TripID: trip.ID,
		From:   "Rahul",
		To:     "You",
		Amount: "5500",
		Note:   "UPI",
	}))
	if err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	settlement := resp.Msg.Settlement

	summary := getSummary(t, client, trip.ID)
	if rahul, _ := balanceOf(summary, "Rahul"); rahul != 0 {
		t.Errorf("Rahul should be settled, got %v", rahul)
	}
	wantPlan := []api.Transaction{
		{From: "Neha", To: "You", Amount: 3500},
		{From: "Amit", To: "You", Amount: 3500},
	}
	if !reflect.DeepEqual(summary.Settlements, wantPlan) {
		t.Errorf("Settlements = %+v, want %+v", summary.Settlements, wantPlan)
	}
	// Payments are not spending
	if summary.Stats.TotalExpenses != 30000 || summary.Stats.ExpenseCount != 4 {
		t.Errorf("settlement leaked into stats: %+v", summary.Stats)
	}

	if _, err := client.DeleteSettlement(ctx, connect.NewRequest(&api.DeleteSettlementRequest{
		TripID:       trip.ID,
		SettlementID: settlement.ID,
	})); err != nil {
		t.Fatalf("DeleteSettlement failed: %v", err)
	}
	if summary := getSummary(t, client, trip.ID); len(summary.Settlements) != 3 {
		t.Errorf("expected the original 3-payment plan back, got %+v", summary.Settlements)
	}
}

func TestRecordSettlement_InvalidArgument(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)

	tests := []struct {
		name string
		req  api.RecordSettlementRequest
	}{
		{name: "to self", req: api.RecordSettlementRequest{From: "You", To: "You", Amount: "10"}},
		{name: "unknown member", req: api.RecordSettlementRequest{From: "Priya", To: "You", Amount: "10"}},
		{name: "zero amount", req: api.RecordSettlementRequest{From: "Rahul", To: "You", Amount: "0"}},
		{name: "missing recipient", req: api.RecordSettlementRequest{From: "Rahul", Amount: "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.TripID = trip.ID
			_, err := client.RecordSettlement(context.Background(), connect.NewRequest(&req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestDeleteSettlement_WrongTrip(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	goa := createGoaTrip(t, client)
	other := createTrip(t, client, &api.CreateTripRequest{Members: members("You")})

	resp, err := client.RecordSettlement(ctx, connect.NewRequest(&api.RecordSettlementRequest{
		TripID: goa.ID, From: "Neha", To: "You", Amount: "100",
	}))
	if err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}

	_, err = client.DeleteSettlement(ctx, connect.NewRequest(&api.DeleteSettlementRequest{
		TripID:       other.ID,
		SettlementID: resp.Msg.Settlement.ID,
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestMembers(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)
	ctx := context.Background()

	added, err := client.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{
		TripID: trip.ID,
		Member: api.Member{Name: "Priya", Email: "priya@example.com"},
	}))
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if n := len(added.Msg.Trip.Members); n != 5 || added.Msg.Trip.Members[4].Name != "Priya" {
		t.Errorf("expected Priya appended as fifth member, got %+v", added.Msg.Trip.Members)
	}

	_, err = client.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{
		TripID: trip.ID,
		Member: api.Member{Name: "PRIYA"},
	}))
	assertCode(t, err, connect.CodeInvalidArgument)

	removed, err := client.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{TripID: trip.ID, Name: "Amit"}))
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if len(removed.Msg.Trip.Members) != 4 {
		t.Errorf("expected 4 members after removal, got %d", len(removed.Msg.Trip.Members))
	}

	_, err = client.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{TripID: trip.ID, Name: "Amit"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestRemoveMember_KeepsHistory(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)

	if _, err := client.RemoveMember(context.Background(), connect.NewRequest(&api.RemoveMemberRequest{
		TripID: trip.ID,
		Name:   "Amit",
	})); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	summary := getSummary(t, client, trip.ID)

	// 30000 now splits three ways. Amit still fronted 4000.
	want := []api.Balance{
		{Member: "You", Amount: 10000},
		{Member: "Rahul", Amount: -8000},
		{Member: "Neha", Amount: -6000},
		{Member: "Amit", Amount: 4000},
	}
	if !reflect.DeepEqual(summary.Balances, want) {
		t.Errorf("Balances = %+v, want %+v", summary.Balances, want)
	}
	if summary.Stats.MemberSpending["Amit"] != 4000 {
		t.Errorf("Amit's spending should stay in stats, got %v", summary.Stats.MemberSpending["Amit"])
	}
}

func TestSplitPolicy(t *testing.T) {
	tests := []struct {
		policy    calculator.SplitPolicy
		wantPriya float64
		wantRahul float64
	}{
		{policy: calculator.SplitAtEvaluation, wantPriya: -100, wantRahul: -100},
		{policy: calculator.SplitAtCreation, wantPriya: 0, wantRahul: -150},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			client := setupTestServer(t, WithSplitPolicy(tt.policy))
			trip := createTrip(t, client, &api.CreateTripRequest{Members: members("You", "Rahul")})
			addExpense(t, client, &api.AddExpenseRequest{TripID: trip.ID, Amount: "300", PaidBy: "You"})

			if _, err := client.AddMember(context.Background(), connect.NewRequest(&api.AddMemberRequest{
				TripID: trip.ID,
				Member: api.Member{Name: "Priya"},
			})); err != nil {
				t.Fatalf("AddMember failed: %v", err)
			}

			summary := getSummary(t, client, trip.ID)
			if summary.SplitPolicy != tt.policy.String() {
				t.Errorf("expected policy %s, got %s", tt.policy, summary.SplitPolicy)
			}
			if got, _ := balanceOf(summary, "Priya"); got != tt.wantPriya {
				t.Errorf("Priya: expected %v, got %v", tt.wantPriya, got)
			}
			if got, _ := balanceOf(summary, "Rahul"); got != tt.wantRahul {
				t.Errorf("Rahul: expected %v, got %v", tt.wantRahul, got)
			}

			resp, err := client.GetTrip(context.Background(), connect.NewRequest(&api.GetTripRequest{TripID: trip.ID}))
			if err != nil {
				t.Fatalf("GetTrip failed: %v", err)
			}
			if got := resp.Msg.Expenses[0].MembersAtCreation; !reflect.DeepEqual(got, []string{"You", "Rahul"}) {
				t.Errorf("expected exported members at creation [You Rahul], got %v", got)
			}
		})
	}
}

func TestArchivedTripIsReadOnly(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)
	ctx := context.Background()

	archived, err := client.ArchiveTrip(ctx, connect.NewRequest(&api.ArchiveTripRequest{TripID: trip.ID, Archived: true}))
	if err != nil {
		t.Fatalf("ArchiveTrip failed: %v", err)
	}
	if !archived.Msg.Trip.Archived {
		t.Error("expected trip to be archived")
	}

	_, err = client.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{TripID: trip.ID, Amount: "10", PaidBy: "You"}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = client.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{TripID: trip.ID, Member: api.Member{Name: "Priya"}}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = client.RecordSettlement(ctx, connect.NewRequest(&api.RecordSettlementRequest{
		TripID: trip.ID, From: "Rahul", To: "You", Amount: "10",
	}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	// Reads still work
	if summary := getSummary(t, client, trip.ID); summary.Stats.ExpenseCount != 4 {
		t.Errorf("expected 4 expenses, got %d", summary.Stats.ExpenseCount)
	}

	if _, err := client.ArchiveTrip(ctx, connect.NewRequest(&api.ArchiveTripRequest{TripID: trip.ID})); err != nil {
		t.Fatalf("unarchive failed: %v", err)
	}
	addExpense(t, client, &api.AddExpenseRequest{TripID: trip.ID, Amount: "10", PaidBy: "You"})
}

// archivingStore archives a trip right after handing it out, the way an
// ArchiveTrip landing between the read and the write would.
type archivingStore struct {
	storage.Store
}

func (s archivingStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := s.Store.GetTrip(ctx, tripID)
	if err == nil && !trip.Archived {
		err = s.Store.SetArchived(ctx, tripID, true)
	}
	return trip, err
}

func TestArchivedBetweenReadAndWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	trip := &models.Trip{Name: "Goa", Members: []models.Member{{Name: "You"}, {Name: "Rahul"}}}
	if err := store.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}

	client := serveStore(t, archivingStore{Store: store})

	_, err := client.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{TripID: trip.ID, Amount: "10", PaidBy: "You"}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	expenses, err := store.ListExpenses(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("expected no expenses on the archived trip, got %d", len(expenses))
	}
}

func TestWatchTrip(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := client.WatchTrip(ctx, connect.NewRequest(&api.WatchTripRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatalf("WatchTrip failed: %v", err)
	}
	defer stream.Close()

	if !stream.Receive() {
		t.Fatalf("expected initial summary: %v", stream.Err())
	}
	initial := stream.Msg().Summary
	if initial.Stats.ExpenseCount != 4 {
		t.Errorf("initial summary: expected 4 expenses, got %d", initial.Stats.ExpenseCount)
	}

	addExpense(t, client, &api.AddExpenseRequest{TripID: trip.ID, Amount: "800", PaidBy: "Rahul", Category: "Food"})

	if !stream.Receive() {
		t.Fatalf("expected updated summary: %v", stream.Err())
	}
	updated := stream.Msg().Summary
	if updated.Stats.ExpenseCount != 5 || updated.Stats.TotalExpenses != 30800 {
		t.Errorf("updated summary: unexpected stats %+v", updated.Stats)
	}
	if updated.Fingerprint == initial.Fingerprint {
		t.Error("updated summary should carry a new fingerprint")
	}
}

func TestWatchTrip_EndsWhenTripDeleted(t *testing.T) {
	client := setupTestServer(t)
	trip := createGoaTrip(t, client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := client.WatchTrip(ctx, connect.NewRequest(&api.WatchTripRequest{TripID: trip.ID}))
	if err != nil {
		t.Fatalf("WatchTrip failed: %v", err)
	}
	defer stream.Close()

	if !stream.Receive() {
		t.Fatalf("expected initial summary: %v", stream.Err())
	}

	if _, err := client.DeleteTrip(ctx, connect.NewRequest(&api.DeleteTripRequest{TripID: trip.ID})); err != nil {
		t.Fatalf("DeleteTrip failed: %v", err)
	}

	if stream.Receive() {
		t.Fatalf("expected stream to end, got %+v", stream.Msg())
	}
	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("expected clean end of stream, got %v", err)
	}
}

func TestWatchTrip_NotFound(t *testing.T) {
	client := setupTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := client.WatchTrip(ctx, connect.NewRequest(&api.WatchTripRequest{TripID: "missing"}))
	if err != nil {
		assertCode(t, err, connect.CodeNotFound)
		return
	}
	defer stream.Close()

	if stream.Receive() {
		t.Fatal("expected no messages for a missing trip")
	}
	assertCode(t, stream.Err(), connect.CodeNotFound)
}
