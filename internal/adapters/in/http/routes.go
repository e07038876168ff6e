package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface lists the operations of openapi.json.
type ServerInterface interface {
	// (POST /api/v1/orders)
	PlaceOrder(ctx echo.Context) error
	// (GET /api/v1/orders/active)
	GetActiveOrders(ctx echo.Context) error
	// (GET /api/v1/orders/{orderId})
	GetOrder(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /api/v1/orders/{orderId}/transitions)
	TransitionOrder(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /api/v1/orders/{orderId}/assignment)
	AssignRider(ctx echo.Context, orderID openapi_types.UUID) error
	// (DELETE /api/v1/orders/{orderId}/assignment)
	ReleaseAssignment(ctx echo.Context, orderID openapi_types.UUID) error
	// (POST /api/v1/deals)
	CreateDeal(ctx echo.Context) error
	// (GET /api/v1/deals/{dealId})
	GetDeal(ctx echo.Context, dealID openapi_types.UUID) error
	// (POST /api/v1/deals/{dealId}/reservations)
	ReserveDeal(ctx echo.Context, dealID openapi_types.UUID) error
	// (POST /api/v1/reservations/{token}/commit)
	CommitReservation(ctx echo.Context, token openapi_types.UUID) error
	// (POST /api/v1/reservations/{token}/release)
	ReleaseReservation(ctx echo.Context, token openapi_types.UUID) error
}

// ServerInterfaceWrapper binds path parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) PlaceOrder(ctx echo.Context) error {
	return w.Handler.PlaceOrder(ctx)
}

func (w *ServerInterfaceWrapper) GetActiveOrders(ctx echo.Context) error {
	return w.Handler.GetActiveOrders(ctx)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.GetOrder(ctx, orderID)
}

func (w *ServerInterfaceWrapper) TransitionOrder(ctx echo.Context) error {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.TransitionOrder(ctx, orderID)
}

func (w *ServerInterfaceWrapper) AssignRider(ctx echo.Context) error {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.AssignRider(ctx, orderID)
}

func (w *ServerInterfaceWrapper) ReleaseAssignment(ctx echo.Context) error {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.ReleaseAssignment(ctx, orderID)
}

func (w *ServerInterfaceWrapper) CreateDeal(ctx echo.Context) error {
	return w.Handler.CreateDeal(ctx)
}

func (w *ServerInterfaceWrapper) GetDeal(ctx echo.Context) error {
	dealID, err := bindUUID(ctx, "dealId")
	if err != nil {
		return err
	}
	return w.Handler.GetDeal(ctx, dealID)
}

func (w *ServerInterfaceWrapper) ReserveDeal(ctx echo.Context) error {
	dealID, err := bindUUID(ctx, "dealId")
	if err != nil {
		return err
	}
	return w.Handler.ReserveDeal(ctx, dealID)
}

func (w *ServerInterfaceWrapper) CommitReservation(ctx echo.Context) error {
	token, err := bindUUID(ctx, "token")
	if err != nil {
		return err
	}
	return w.Handler.CommitReservation(ctx, token)
}

func (w *ServerInterfaceWrapper) ReleaseReservation(ctx echo.Context) error {
	token, err := bindUUID(ctx, "token")
	if err != nil {
		return err
	}
	return w.Handler.ReleaseReservation(ctx, token)
}

func bindUUID(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers mounts every operation of si on router.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.POST("/api/v1/orders", w.PlaceOrder)
	router.GET("/api/v1/orders/active", w.GetActiveOrders)
	router.GET("/api/v1/orders/:orderId", w.GetOrder)
	router.POST("/api/v1/orders/:orderId/transitions", w.TransitionOrder)
	router.POST("/api/v1/orders/:orderId/assignment", w.AssignRider)
	router.DELETE("/api/v1/orders/:orderId/assignment", w.ReleaseAssignment)
	router.POST("/api/v1/deals", w.CreateDeal)
	router.GET("/api/v1/deals/:dealId", w.GetDeal)
	router.POST("/api/v1/deals/:dealId/reservations", w.ReserveDeal)
	router.POST("/api/v1/reservations/:token/commit", w.CommitReservation)
	router.POST("/api/v1/reservations/:token/release", w.ReleaseReservation)
}
