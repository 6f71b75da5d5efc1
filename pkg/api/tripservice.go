package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// TripServiceName is the fully-qualified name of the TripService service.
const TripServiceName = "tripledger.v1.TripService"

// Procedure paths, as they appear at the end of URL paths.
const (
	TripServiceCreateTripProcedure       = "/tripledger.v1.TripService/CreateTrip"
	TripServiceGetTripProcedure          = "/tripledger.v1.TripService/GetTrip"
	TripServiceListTripsProcedure        = "/tripledger.v1.TripService/ListTrips"
	TripServiceUpdateTripProcedure       = "/tripledger.v1.TripService/UpdateTrip"
	TripServiceDeleteTripProcedure       = "/tripledger.v1.TripService/DeleteTrip"
	TripServiceArchiveTripProcedure      = "/tripledger.v1.TripService/ArchiveTrip"
	TripServiceAddMemberProcedure        = "/tripledger.v1.TripService/AddMember"
	TripServiceRemoveMemberProcedure     = "/tripledger.v1.TripService/RemoveMember"
	TripServiceAddExpenseProcedure       = "/tripledger.v1.TripService/AddExpense"
	TripServiceUpdateExpenseProcedure    = "/tripledger.v1.TripService/UpdateExpense"
	TripServiceDeleteExpenseProcedure    = "/tripledger.v1.TripService/DeleteExpense"
	TripServiceRecordSettlementProcedure = "/tripledger.v1.TripService/RecordSettlement"
	TripServiceDeleteSettlementProcedure = "/tripledger.v1.TripService/DeleteSettlement"
	TripServiceGetSummaryProcedure       = "/tripledger.v1.TripService/GetSummary"
	TripServiceWatchTripProcedure        = "/tripledger.v1.TripService/WatchTrip"
)

// TripServiceHandler is implemented by the server side of TripService.
type TripServiceHandler interface {
	CreateTrip(context.Context, *connect.Request[CreateTripRequest]) (*connect.Response[CreateTripResponse], error)
	GetTrip(context.Context, *connect.Request[GetTripRequest]) (*connect.Response[GetTripResponse], error)
	ListTrips(context.Context, *connect.Request[ListTripsRequest]) (*connect.Response[ListTripsResponse], error)
	UpdateTrip(context.Context, *connect.Request[UpdateTripRequest]) (*connect.Response[UpdateTripResponse], error)
	DeleteTrip(context.Context, *connect.Request[DeleteTripRequest]) (*connect.Response[DeleteTripResponse], error)
	ArchiveTrip(context.Context, *connect.Request[ArchiveTripRequest]) (*connect.Response[ArchiveTripResponse], error)
	AddMember(context.Context, *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error)
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	RecordSettlement(context.Context, *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error)
	DeleteSettlement(context.Context, *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error)
	GetSummary(context.Context, *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error)
	WatchTrip(context.Context, *connect.Request[WatchTripRequest], *connect.ServerStream[WatchTripResponse]) error
}

// NewTripServiceHandler builds an HTTP handler for svc. It returns the path
// to mount the handler on.
func NewTripServiceHandler(svc TripServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(TripServiceCreateTripProcedure, connect.NewUnaryHandler(TripServiceCreateTripProcedure, svc.CreateTrip, opts...))
	mux.Handle(TripServiceGetTripProcedure, connect.NewUnaryHandler(TripServiceGetTripProcedure, svc.GetTrip, opts...))
	mux.Handle(TripServiceListTripsProcedure, connect.NewUnaryHandler(TripServiceListTripsProcedure, svc.ListTrips, opts...))
	mux.Handle(TripServiceUpdateTripProcedure, connect.NewUnaryHandler(TripServiceUpdateTripProcedure, svc.UpdateTrip, opts...))
	mux.Handle(TripServiceDeleteTripProcedure, connect.NewUnaryHandler(TripServiceDeleteTripProcedure, svc.DeleteTrip, opts...))
	mux.Handle(TripServiceArchiveTripProcedure, connect.NewUnaryHandler(TripServiceArchiveTripProcedure, svc.ArchiveTrip, opts...))
	mux.Handle(TripServiceAddMemberProcedure, connect.NewUnaryHandler(TripServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(TripServiceRemoveMemberProcedure, connect.NewUnaryHandler(TripServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(TripServiceAddExpenseProcedure, connect.NewUnaryHandler(TripServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(TripServiceUpdateExpenseProcedure, connect.NewUnaryHandler(TripServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...))
	mux.Handle(TripServiceDeleteExpenseProcedure, connect.NewUnaryHandler(TripServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(TripServiceRecordSettlementProcedure, connect.NewUnaryHandler(TripServiceRecordSettlementProcedure, svc.RecordSettlement, opts...))
	mux.Handle(TripServiceDeleteSettlementProcedure, connect.NewUnaryHandler(TripServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...))
	mux.Handle(TripServiceGetSummaryProcedure, connect.NewUnaryHandler(TripServiceGetSummaryProcedure, svc.GetSummary, opts...))
	mux.Handle(TripServiceWatchTripProcedure, connect.NewServerStreamHandler(TripServiceWatchTripProcedure, svc.WatchTrip, opts...))

	return "/" + TripServiceName + "/", mux
}

// TripServiceClient is a client for the TripService service.
type TripServiceClient struct {
	createTrip       *connect.Client[CreateTripRequest, CreateTripResponse]
	getTrip          *connect.Client[GetTripRequest, GetTripResponse]
	listTrips        *connect.Client[ListTripsRequest, ListTripsResponse]
	updateTrip       *connect.Client[UpdateTripRequest, UpdateTripResponse]
	deleteTrip       *connect.Client[DeleteTripRequest, DeleteTripResponse]
	archiveTrip      *connect.Client[ArchiveTripRequest, ArchiveTripResponse]
	addMember        *connect.Client[AddMemberRequest, AddMemberResponse]
	removeMember     *connect.Client[RemoveMemberRequest, RemoveMemberResponse]
	addExpense       *connect.Client[AddExpenseRequest, AddExpenseResponse]
	updateExpense    *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	deleteExpense    *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	recordSettlement *connect.Client[RecordSettlementRequest, RecordSettlementResponse]
	deleteSettlement *connect.Client[DeleteSettlementRequest, DeleteSettlementResponse]
	getSummary       *connect.Client[GetSummaryRequest, GetSummaryResponse]
	watchTrip        *connect.Client[WatchTripRequest, WatchTripResponse]
}

// NewTripServiceClient constructs a client for the TripService service at
// baseURL (e.g. http://localhost:8080).
func NewTripServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TripServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)

	return &TripServiceClient{
		createTrip:       connect.NewClient[CreateTripRequest, CreateTripResponse](httpClient, baseURL+TripServiceCreateTripProcedure, opts...),
		getTrip:          connect.NewClient[GetTripRequest, GetTripResponse](httpClient, baseURL+TripServiceGetTripProcedure, opts...),
		listTrips:        connect.NewClient[ListTripsRequest, ListTripsResponse](httpClient, baseURL+TripServiceListTripsProcedure, opts...),
		updateTrip:       connect.NewClient[UpdateTripRequest, UpdateTripResponse](httpClient, baseURL+TripServiceUpdateTripProcedure, opts...),
		deleteTrip:       connect.NewClient[DeleteTripRequest, DeleteTripResponse](httpClient, baseURL+TripServiceDeleteTripProcedure, opts...),
		archiveTrip:      connect.NewClient[ArchiveTripRequest, ArchiveTripResponse](httpClient, baseURL+TripServiceArchiveTripProcedure, opts...),
		addMember:        connect.NewClient[AddMemberRequest, AddMemberResponse](httpClient, baseURL+TripServiceAddMemberProcedure, opts...),
		removeMember:     connect.NewClient[RemoveMemberRequest, RemoveMemberResponse](httpClient, baseURL+TripServiceRemoveMemberProcedure, opts...),
		addExpense:       connect.NewClient[AddExpenseRequest, AddExpenseResponse](httpClient, baseURL+TripServiceAddExpenseProcedure, opts...),
		updateExpense:    connect.NewClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, baseURL+TripServiceUpdateExpenseProcedure, opts...),
		deleteExpense:    connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+TripServiceDeleteExpenseProcedure, opts...),
		recordSettlement: connect.NewClient[RecordSettlementRequest, RecordSettlementResponse](httpClient, baseURL+TripServiceRecordSettlementProcedure, opts...),
		deleteSettlement: connect.NewClient[DeleteSettlementRequest, DeleteSettlementResponse](httpClient, baseURL+TripServiceDeleteSettlementProcedure, opts...),
		getSummary:       connect.NewClient[GetSummaryRequest, GetSummaryResponse](httpClient, baseURL+TripServiceGetSummaryProcedure, opts...),
		watchTrip:        connect.NewClient[WatchTripRequest, WatchTripResponse](httpClient, baseURL+TripServiceWatchTripProcedure, opts...),
	}
}

func (c *TripServiceClient) CreateTrip(ctx context.Context, req *connect.Request[CreateTripRequest]) (*connect.Response[CreateTripResponse], error) {
	return c.createTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetTrip(ctx context.Context, req *connect.Request[GetTripRequest]) (*connect.Response[GetTripResponse], error) {
	return c.getTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) ListTrips(ctx context.Context, req *connect.Request[ListTripsRequest]) (*connect.Response[ListTripsResponse], error) {
	return c.listTrips.CallUnary(ctx, req)
}

func (c *TripServiceClient) UpdateTrip(ctx context.Context, req *connect.Request[UpdateTripRequest]) (*connect.Response[UpdateTripResponse], error) {
	return c.updateTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) DeleteTrip(ctx context.Context, req *connect.Request[DeleteTripRequest]) (*connect.Response[DeleteTripResponse], error) {
	return c.deleteTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) ArchiveTrip(ctx context.Context, req *connect.Request[ArchiveTripRequest]) (*connect.Response[ArchiveTripResponse], error) {
	return c.archiveTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *TripServiceClient) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *TripServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *TripServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *TripServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *TripServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *TripServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetSummary(ctx context.Context, req *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}

func (c *TripServiceClient) WatchTrip(ctx context.Context, req *connect.Request[WatchTripRequest]) (*connect.ServerStreamForClient[WatchTripResponse], error) {
	return c.watchTrip.CallServerStream(ctx, req)
}
