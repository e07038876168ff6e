package http

import (
	"net/http"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/deal"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Server implements ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	placeOrderHandler         commands.PlaceOrderCommandHandler
	transitionOrderHandler    commands.TransitionOrderCommandHandler
	assignRiderHandler        commands.AssignRiderCommandHandler
	releaseAssignmentHandler  commands.ReleaseAssignmentCommandHandler
	createDealHandler         commands.CreateDealCommandHandler
	reserveDealHandler        commands.ReserveDealCommandHandler
	commitReservationHandler  commands.CommitReservationCommandHandler
	releaseReservationHandler commands.ReleaseReservationCommandHandler

	// Query handlers
	getOrderStatusHandler       queries.GetOrderStatusQueryHandler
	getUncompletedOrdersHandler queries.GetUncompletedOrdersQueryHandler
	getDealSnapshotHandler      queries.GetDealSnapshotQueryHandler
}

var _ ServerInterface = (*Server)(nil)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	PlaceOrder         commands.PlaceOrderCommandHandler
	TransitionOrder    commands.TransitionOrderCommandHandler
	AssignRider        commands.AssignRiderCommandHandler
	ReleaseAssignment  commands.ReleaseAssignmentCommandHandler
	CreateDeal         commands.CreateDealCommandHandler
	ReserveDeal        commands.ReserveDealCommandHandler
	CommitReservation  commands.CommitReservationCommandHandler
	ReleaseReservation commands.ReleaseReservationCommandHandler

	GetOrderStatus       queries.GetOrderStatusQueryHandler
	GetUncompletedOrders queries.GetUncompletedOrdersQueryHandler
	GetDealSnapshot      queries.GetDealSnapshotQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(h Handlers) *Server {
	return &Server{
		placeOrderHandler:           h.PlaceOrder,
		transitionOrderHandler:      h.TransitionOrder,
		assignRiderHandler:          h.AssignRider,
		releaseAssignmentHandler:    h.ReleaseAssignment,
		createDealHandler:           h.CreateDeal,
		reserveDealHandler:          h.ReserveDeal,
		commitReservationHandler:    h.CommitReservation,
		releaseReservationHandler:   h.ReleaseReservation,
		getOrderStatusHandler:       h.GetOrderStatus,
		getUncompletedOrdersHandler: h.GetUncompletedOrders,
		getDealSnapshotHandler:      h.GetDealSnapshot,
	}
}

// PlaceOrder handles POST /api/v1/orders - stores a pending order and reserves its deal lines.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	var body NewOrder
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	vendorID, err := kernel.UUIDFromString(body.VendorID)
	if err != nil {
		return writeError(ctx, err)
	}
	customerID, err := kernel.UUIDFromString(body.CustomerID)
	if err != nil {
		return writeError(ctx, err)
	}

	lines := make([]commands.PlaceOrderLine, 0, len(body.Items))
	for _, item := range body.Items {
		line, lineErr := placeOrderLineOf(item)
		if lineErr != nil {
			return writeError(ctx, lineErr)
		}
		lines = append(lines, line)
	}

	cmd, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), vendorID, customerID, lines, body.SpecialInstructions)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.placeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	tokens := make([]string, 0, len(result.ReservationTokens))
	for _, token := range result.ReservationTokens {
		tokens = append(tokens, token.String())
	}

	return ctx.JSON(http.StatusCreated, PlacedOrder{
		ID:                result.OrderID.String(),
		Status:            result.Status.String(),
		Total:             result.Total.String(),
		ReservationTokens: tokens,
	})
}

func placeOrderLineOf(item NewOrderItem) (commands.PlaceOrderLine, error) {
	productID, err := kernel.UUIDFromString(item.ProductID)
	if err != nil {
		return commands.PlaceOrderLine{}, err
	}
	price, err := kernel.MoneyFromString(item.UnitPrice)
	if err != nil {
		return commands.PlaceOrderLine{}, err
	}

	line := commands.PlaceOrderLine{ProductID: productID, Quantity: item.Quantity, UnitPrice: price}
	if item.DealID != nil {
		dealID, err := kernel.UUIDFromString(*item.DealID)
		if err != nil {
			return commands.PlaceOrderLine{}, err
		}
		line.DealID = &dealID
	}
	return line, nil
}

// GetActiveOrders handles GET /api/v1/orders/active - retrieves all uncompleted orders.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	orders, err := s.getUncompletedOrdersHandler.Handle(ctx.Request().Context(), queries.NewGetUncompletedOrdersQuery())
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]OrderSummary, len(orders))
	for i, o := range orders {
		response[i] = OrderSummary{
			ID:         o.ID.String(),
			VendorID:   o.VendorID.String(),
			CustomerID: o.CustomerID.String(),
			RiderID:    optionalString(o.RiderID),
			Status:     o.Status.String(),
			Total:      o.Total.String(),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/v1/orders/{orderId} - returns the order status snapshot.
func (s *Server) GetOrder(ctx echo.Context, orderID openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return writeError(ctx, err)
	}
	query, err := queries.NewGetOrderStatusQuery(id)
	if err != nil {
		return writeError(ctx, err)
	}

	response, err := s.getOrderStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderViewOf(response))
}

// TransitionOrder handles POST /api/v1/orders/{orderId}/transitions.
func (s *Server) TransitionOrder(ctx echo.Context, orderID openapi_types.UUID) error {
	var body TransitionRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return writeError(ctx, err)
	}
	role, err := order.ParseRole(body.ActingRole)
	if err != nil {
		return writeError(ctx, err)
	}
	actingID, err := kernel.UUIDFromString(body.ActingID)
	if err != nil {
		return writeError(ctx, err)
	}
	target, err := order.ParseStatus(body.TargetStatus)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewTransitionOrderCommand(id, role, actingID, target, body.Reason)
	if err != nil {
		return writeError(ctx, err)
	}

	result, err := s.transitionOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, TransitionResult{
		From:         result.From.String(),
		Status:       result.Status.String(),
		HistoryEntry: historyEntryOf(result.HistoryEntry),
	})
}

// AssignRider handles POST /api/v1/orders/{orderId}/assignment.
func (s *Server) AssignRider(ctx echo.Context, orderID openapi_types.UUID) error {
	var body AssignRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return writeError(ctx, err)
	}
	riderID, err := kernel.UUIDFromString(body.RiderID)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewAssignRiderCommand(id, riderID)
	if err != nil {
		return writeError(ctx, err)
	}

	assignmentID, err := s.assignRiderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, Assignment{AssignmentID: assignmentID.String()})
}

// ReleaseAssignment handles DELETE /api/v1/orders/{orderId}/assignment.
func (s *Server) ReleaseAssignment(ctx echo.Context, orderID openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewReleaseAssignmentCommand(id)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.releaseAssignmentHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CreateDeal handles POST /api/v1/deals - stores a new active deal.
func (s *Server) CreateDeal(ctx echo.Context) error {
	var body NewDeal
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	params, err := dealParamsOf(body)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewCreateDealCommand(params)
	if err != nil {
		return writeError(ctx, err)
	}

	id, err := s.createDealHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreatedDeal{ID: id.String()})
}

func dealParamsOf(body NewDeal) (deal.Params, error) {
	productRef, err := kernel.UUIDFromString(body.ProductRef)
	if err != nil {
		return deal.Params{}, err
	}
	originalPrice, err := kernel.MoneyFromString(body.OriginalPrice)
	if err != nil {
		return deal.Params{}, err
	}
	dealPrice, err := kernel.MoneyFromString(body.DealPrice)
	if err != nil {
		return deal.Params{}, err
	}
	dealType, err := deal.ParseType(body.DealType)
	if err != nil {
		return deal.Params{}, err
	}

	discount := decimal.Zero
	if body.DiscountPercentage != "" {
		if discount, err = decimal.NewFromString(body.DiscountPercentage); err != nil {
			return deal.Params{}, badValue("discountPercentage", err)
		}
	}

	return deal.Params{
		ID:                 kernel.NewUUID(),
		ProductRef:         productRef,
		OriginalPrice:      originalPrice,
		DealPrice:          dealPrice,
		DiscountPercentage: discount,
		Type:               dealType,
		StartDate:          body.StartDate,
		EndDate:            body.EndDate,
		MaxQuantity:        body.MaxQuantity,
		Featured:           body.Featured,
		Category:           body.Category,
		Tags:               body.Tags,
	}, nil
}

// GetDeal handles GET /api/v1/deals/{dealId} - returns the deal snapshot.
func (s *Server) GetDeal(ctx echo.Context, dealID openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(dealID[:])
	if err != nil {
		return writeError(ctx, err)
	}
	query, err := queries.NewGetDealSnapshotQuery(id)
	if err != nil {
		return writeError(ctx, err)
	}

	response, err := s.getDealSnapshotHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, dealViewOf(response))
}

// ReserveDeal handles POST /api/v1/deals/{dealId}/reservations.
func (s *Server) ReserveDeal(ctx echo.Context, dealID openapi_types.UUID) error {
	var body ReserveRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := kernel.UUIDFromBytes(dealID[:])
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewReserveDealCommand(id, body.Quantity)
	if err != nil {
		return writeError(ctx, err)
	}

	token, err := s.reserveDealHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, Reservation{ReservationToken: token.String()})
}

// CommitReservation handles POST /api/v1/reservations/{token}/commit.
func (s *Server) CommitReservation(ctx echo.Context, token openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(token[:])
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewCommitReservationCommand(id)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.commitReservationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ReleaseReservation handles POST /api/v1/reservations/{token}/release.
func (s *Server) ReleaseReservation(ctx echo.Context, token openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(token[:])
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewReleaseReservationCommand(id)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.releaseReservationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}
