package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tripledger/internal/cache"
	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/metrics"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage"
	"github.com/mmynk/tripledger/pkg/api"
)

// TripService implements the Connect TripService.
type TripService struct {
	store      storage.Store
	cache      cache.Cache
	metrics    *metrics.Metrics
	policy     calculator.SplitPolicy
	broker     *Broker
	summarizer *Summarizer
}

var _ api.TripServiceHandler = (*TripService)(nil)

// Option configures a TripService.
type Option func(*TripService)

// WithCache memoizes summaries in c.
func WithCache(c cache.Cache) Option {
	return func(s *TripService) { s.cache = c }
}

// WithMetrics records summary and watcher metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *TripService) { s.metrics = m }
}

// WithSplitPolicy sets how "split with everyone" expenses are shared.
func WithSplitPolicy(p calculator.SplitPolicy) Option {
	return func(s *TripService) { s.policy = p }
}

// WithBroker shares a change broker between services.
func WithBroker(b *Broker) Option {
	return func(s *TripService) { s.broker = b }
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store, opts ...Option) *TripService {
	s := &TripService{store: store, policy: calculator.SplitAtEvaluation}
	for _, opt := range opts {
		opt(s)
	}
	if s.broker == nil {
		s.broker = NewBroker()
	}
	s.summarizer = NewSummarizer(s.cache, s.metrics, s.policy)
	return s
}

// writableTrip loads a trip that is about to be modified.
func (s *TripService) writableTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Archived {
		return nil, fmt.Errorf("%w: %s", ErrArchived, tripID)
	}
	return trip, nil
}

// CreateTrip creates a new trip. The first member becomes the owner unless
// the request names one.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	slog.Info("CreateTrip request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	if len(req.Msg.Members) == 0 {
		return nil, fail("CreateTrip", fmt.Errorf("%w: at least one member is required", models.ErrValidation))
	}

	trip := &models.Trip{
		Name:        req.Msg.Name,
		Destination: req.Msg.Destination,
		Budget:      req.Msg.Budget,
		Members:     make([]models.Member, len(req.Msg.Members)),
	}
	hasOwner := false
	for i, m := range req.Msg.Members {
		trip.Members[i] = fromAPIMember(m)
		hasOwner = hasOwner || trip.Members[i].Role == models.RoleOwner
	}
	if !hasOwner {
		trip.Members[0].Role = models.RoleOwner
	}

	if err := trip.Validate(); err != nil {
		return nil, fail("CreateTrip", err)
	}

	// Save to storage (generates ID, timestamps and a name if missing)
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, fail("CreateTrip", err)
	}

	slog.Info("Trip created", "trip_id", trip.ID, "name", trip.Name)

	return connect.NewResponse(&api.CreateTripResponse{Trip: toAPITrip(trip)}), nil
}

// GetTrip returns a trip with its expenses and recorded settlements.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	slog.Info("GetTrip request received", "trip_id", req.Msg.TripID)

	ledger, err := s.store.GetLedger(ctx, req.Msg.TripID)
	if err != nil {
		return nil, fail("GetTrip", err, "trip_id", req.Msg.TripID)
	}

	resp := &api.GetTripResponse{
		Trip:        toAPITrip(ledger.Trip),
		Expenses:    make([]api.Expense, len(ledger.Expenses)),
		Settlements: make([]api.Settlement, len(ledger.Settlements)),
	}
	for i, e := range ledger.Expenses {
		resp.Expenses[i] = *toAPIExpense(e)
	}
	for i, st := range ledger.Settlements {
		resp.Settlements[i] = *toAPISettlement(st)
	}

	slog.Info("GetTrip successful",
		"trip_id", ledger.Trip.ID,
		"expenses_count", len(ledger.Expenses),
		"settlements_count", len(ledger.Settlements),
	)

	return connect.NewResponse(resp), nil
}

// ListTrips returns trips, most recently updated first.
func (s *TripService) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	slog.Info("ListTrips request received", "include_archived", req.Msg.IncludeArchived)

	trips, err := s.store.ListTrips(ctx, req.Msg.IncludeArchived)
	if err != nil {
		return nil, fail("ListTrips", err)
	}

	out := make([]api.Trip, len(trips))
	for i, t := range trips {
		out[i] = *toAPITrip(t)
	}

	slog.Info("ListTrips successful", "count", len(trips))

	return connect.NewResponse(&api.ListTripsResponse{Trips: out}), nil
}

// UpdateTrip changes a trip's name, destination and budget.
func (s *TripService) UpdateTrip(ctx context.Context, req *connect.Request[api.UpdateTripRequest]) (*connect.Response[api.UpdateTripResponse], error) {
	slog.Info("UpdateTrip request received", "trip_id", req.Msg.TripID)

	trip, err := s.writableTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, fail("UpdateTrip", err, "trip_id", req.Msg.TripID)
	}

	if req.Msg.Name != "" {
		trip.Name = req.Msg.Name
	}
	trip.Destination = req.Msg.Destination
	trip.Budget = req.Msg.Budget

	if err := trip.Validate(); err != nil {
		return nil, fail("UpdateTrip", err, "trip_id", trip.ID)
	}
	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		return nil, fail("UpdateTrip", err, "trip_id", trip.ID)
	}
	s.broker.Publish(trip.ID)

	slog.Info("Trip updated", "trip_id", trip.ID)

	return connect.NewResponse(&api.UpdateTripResponse{Trip: toAPITrip(trip)}), nil
}

// DeleteTrip removes a trip and everything recorded for it.
func (s *TripService) DeleteTrip(ctx context.Context, req *connect.Request[api.DeleteTripRequest]) (*connect.Response[api.DeleteTripResponse], error) {
	slog.Info("DeleteTrip request received", "trip_id", req.Msg.TripID)

	if err := s.store.DeleteTrip(ctx, req.Msg.TripID); err != nil {
		return nil, fail("DeleteTrip", err, "trip_id", req.Msg.TripID)
	}
	s.broker.Publish(req.Msg.TripID)

	slog.Info("Trip deleted", "trip_id", req.Msg.TripID)

	return connect.NewResponse(&api.DeleteTripResponse{}), nil
}

// ArchiveTrip archives or unarchives a trip. Archived trips are read-only.
func (s *TripService) ArchiveTrip(ctx context.Context, req *connect.Request[api.ArchiveTripRequest]) (*connect.Response[api.ArchiveTripResponse], error) {
	slog.Info("ArchiveTrip request received", "trip_id", req.Msg.TripID, "archived", req.Msg.Archived)

	if err := s.store.SetArchived(ctx, req.Msg.TripID, req.Msg.Archived); err != nil {
		return nil, fail("ArchiveTrip", err, "trip_id", req.Msg.TripID)
	}
	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, fail("ArchiveTrip", err, "trip_id", req.Msg.TripID)
	}

	return connect.NewResponse(&api.ArchiveTripResponse{Trip: toAPITrip(trip)}), nil
}

// AddMember appends a member to the trip.
func (s *TripService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "trip_id", req.Msg.TripID, "member", req.Msg.Member.Name)

	trip, err := s.writableTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, fail("AddMember", err, "trip_id", req.Msg.TripID)
	}

	member := fromAPIMember(req.Msg.Member)
	trip.Members = append(trip.Members, member)
	if err := trip.Validate(); err != nil {
		return nil, fail("AddMember", err, "trip_id", trip.ID)
	}

	if err := s.store.AddMember(ctx, trip.ID, &member); err != nil {
		return nil, fail("AddMember", err, "trip_id", trip.ID)
	}
	s.broker.Publish(trip.ID)

	updated, err := s.store.GetTrip(ctx, trip.ID)
	if err != nil {
		return nil, fail("AddMember", err, "trip_id", trip.ID)
	}

	slog.Info("Member added", "trip_id", trip.ID, "member", member.Name)

	return connect.NewResponse(&api.AddMemberResponse{Trip: toAPITrip(updated)}), nil
}

// RemoveMember drops a member from the trip. Expenses they paid or shared
// still count towards balances.
func (s *TripService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "trip_id", req.Msg.TripID, "member", req.Msg.Name)

	if _, err := s.writableTrip(ctx, req.Msg.TripID); err != nil {
		return nil, fail("RemoveMember", err, "trip_id", req.Msg.TripID)
	}
	if err := s.store.RemoveMember(ctx, req.Msg.TripID, req.Msg.Name); err != nil {
		return nil, fail("RemoveMember", err, "trip_id", req.Msg.TripID, "member", req.Msg.Name)
	}
	s.broker.Publish(req.Msg.TripID)

	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, fail("RemoveMember", err, "trip_id", req.Msg.TripID)
	}

	slog.Info("Member removed", "trip_id", trip.ID, "member", req.Msg.Name)

	return connect.NewResponse(&api.RemoveMemberResponse{Trip: toAPITrip(trip)}), nil
}

// AddExpense records an expense. The current member list is captured on the
// expense for the creation-time split policy.
func (s *TripService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"trip_id", req.Msg.TripID,
		"paid_by", req.Msg.PaidBy,
		"amount", req.Msg.Amount,
	)

	trip, err := s.writableTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, fail("AddExpense", err, "trip_id", req.Msg.TripID)
	}

	amount, err := models.ParseAmount(req.Msg.Amount)
	if err != nil {
		return nil, fail("AddExpense", err, "trip_id", trip.ID)
	}

	expense := &models.Expense{
		TripID:            trip.ID,
		Title:             req.Msg.Title,
		Amount:            amount,
		PaidBy:            req.Msg.PaidBy,
		SplitBetween:      req.Msg.SplitBetween,
		MembersAtCreation: trip.MemberNames(),
		Category:          req.Msg.Category,
		Description:       req.Msg.Description,
		Date:              req.Msg.Date,
	}
	if err := s.checkExpense(trip, expense); err != nil {
		return nil, fail("AddExpense", err, "trip_id", trip.ID)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fail("AddExpense", err, "trip_id", trip.ID)
	}
	s.broker.Publish(trip.ID)

	slog.Info("Expense added", "trip_id", trip.ID, "expense_id", expense.ID, "amount", expense.Amount)

	return connect.NewResponse(&api.AddExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense replaces an expense's editable fields.
func (s *TripService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	existing, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, fail("UpdateExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	trip, err := s.writableTrip(ctx, existing.TripID)
	if err != nil {
		return nil, fail("UpdateExpense", err, "expense_id", existing.ID)
	}

	amount, err := models.ParseAmount(req.Msg.Amount)
	if err != nil {
		return nil, fail("UpdateExpense", err, "expense_id", existing.ID)
	}

	expense := &models.Expense{
		ID:                existing.ID,
		TripID:            existing.TripID,
		Title:             req.Msg.Title,
		Amount:            amount,
		PaidBy:            req.Msg.PaidBy,
		SplitBetween:      req.Msg.SplitBetween,
		MembersAtCreation: existing.MembersAtCreation,
		Category:          req.Msg.Category,
		Description:       req.Msg.Description,
		Date:              req.Msg.Date,
		CreatedAt:         existing.CreatedAt,
	}
	if err := s.checkExpense(trip, expense); err != nil {
		return nil, fail("UpdateExpense", err, "expense_id", existing.ID)
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, fail("UpdateExpense", err, "expense_id", existing.ID)
	}
	s.broker.Publish(trip.ID)

	slog.Info("Expense updated", "trip_id", trip.ID, "expense_id", expense.ID)

	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense.
func (s *TripService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, fail("DeleteExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	if _, err := s.writableTrip(ctx, expense.TripID); err != nil {
		return nil, fail("DeleteExpense", err, "expense_id", expense.ID)
	}
	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		return nil, fail("DeleteExpense", err, "expense_id", expense.ID)
	}
	s.broker.Publish(expense.TripID)

	slog.Info("Expense deleted", "trip_id", expense.TripID, "expense_id", expense.ID)

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

func (s *TripService) checkExpense(trip *models.Trip, e *models.Expense) error {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return err
	}
	return trip.CheckExpense(e)
}

// RecordSettlement records a payment made between two members.
func (s *TripService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	slog.Info("RecordSettlement request received",
		"trip_id", req.Msg.TripID,
		"from", req.Msg.From,
		"to", req.Msg.To,
		"amount", req.Msg.Amount,
	)

	trip, err := s.writableTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, fail("RecordSettlement", err, "trip_id", req.Msg.TripID)
	}

	amount, err := models.ParseAmount(req.Msg.Amount)
	if err != nil {
		return nil, fail("RecordSettlement", err, "trip_id", trip.ID)
	}

	settlement := &models.Settlement{
		TripID:     trip.ID,
		FromMember: req.Msg.From,
		ToMember:   req.Msg.To,
		Amount:     amount,
		Note:       req.Msg.Note,
	}
	if err := settlement.Validate(); err != nil {
		return nil, fail("RecordSettlement", err, "trip_id", trip.ID)
	}
	if err := trip.CheckSettlement(settlement); err != nil {
		return nil, fail("RecordSettlement", err, "trip_id", trip.ID)
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, fail("RecordSettlement", err, "trip_id", trip.ID)
	}
	s.broker.Publish(trip.ID)

	slog.Info("Settlement recorded", "trip_id", trip.ID, "settlement_id", settlement.ID)

	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// DeleteSettlement removes a recorded payment from a trip.
func (s *TripService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	slog.Info("DeleteSettlement request received", "trip_id", req.Msg.TripID, "settlement_id", req.Msg.SettlementID)

	if _, err := s.writableTrip(ctx, req.Msg.TripID); err != nil {
		return nil, fail("DeleteSettlement", err, "trip_id", req.Msg.TripID)
	}

	settlements, err := s.store.ListSettlements(ctx, req.Msg.TripID)
	if err != nil {
		return nil, fail("DeleteSettlement", err, "trip_id", req.Msg.TripID)
	}
	found := false
	for _, st := range settlements {
		if st.ID == req.Msg.SettlementID {
			found = true
			break
		}
	}
	if !found {
		err := fmt.Errorf("%w: settlement %s", storage.ErrNotFound, req.Msg.SettlementID)
		return nil, fail("DeleteSettlement", err, "trip_id", req.Msg.TripID)
	}

	if err := s.store.DeleteSettlement(ctx, req.Msg.SettlementID); err != nil {
		return nil, fail("DeleteSettlement", err, "settlement_id", req.Msg.SettlementID)
	}
	s.broker.Publish(req.Msg.TripID)

	slog.Info("Settlement deleted", "trip_id", req.Msg.TripID, "settlement_id", req.Msg.SettlementID)

	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}

// GetSummary returns balances, the settlement plan, stats and budget usage
// computed from one consistent read of the trip's ledger.
func (s *TripService) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	slog.Info("GetSummary request received", "trip_id", req.Msg.TripID)

	if req.Msg.TripID == "" {
		return nil, fail("GetSummary", fmt.Errorf("%w: trip_id required", models.ErrValidation))
	}

	ledger, err := s.store.GetLedger(ctx, req.Msg.TripID)
	if err != nil {
		return nil, fail("GetSummary", err, "trip_id", req.Msg.TripID)
	}

	summary := s.summarizer.Summarize(ctx, ledger)

	slog.Info("GetSummary successful",
		"trip_id", summary.TripID,
		"members_count", len(summary.Balances),
		"settlements_count", len(summary.Settlements),
	)

	return connect.NewResponse(&api.GetSummaryResponse{Summary: summary}), nil
}
