package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketly/storefront/internal/core/attribution"
	"github.com/marketly/storefront/internal/core/domain"
)

// CheckoutAPI places the cart as an order.
type CheckoutAPI interface {
	PlaceOrder(ctx context.Context, customer *domain.User, address domain.ShippingAddress) (*domain.Order, error)
}

// OrdersAPI is what the order routes need from the order service.
type OrdersAPI interface {
	CustomerOrders(ctx context.Context, customer *domain.User) ([]attribution.OrderView, error)
	SellerOrders(ctx context.Context, seller *domain.User) ([]attribution.OrderView, error)
	ChangeStatus(ctx context.Context, seller *domain.User, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

type OrderHandler struct {
	checkout CheckoutAPI
	orders   OrdersAPI
}

func NewOrderHandler(checkout CheckoutAPI, orders OrdersAPI) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders}
}

type checkoutRequest struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderListResponse struct {
	Orders []attribution.OrderView `json:"orders"`
}

// Checkout turns the cart into a pending order.
//
// @Summary      Place an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      checkoutRequest  true  "Shipping address"
// @Success      201   {object}  domain.Order
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /checkout [post]
func (h *OrderHandler) Checkout(c echo.Context) error {
	customer, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	order, err := h.checkout.PlaceOrder(c.Request().Context(), customer, req.ShippingAddress)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// Mine lists the caller's orders, newest first.
//
// @Summary      My orders
// @Tags         orders
// @Produce      json
// @Success      200  {object}  orderListResponse
// @Router       /orders [get]
func (h *OrderHandler) Mine(c echo.Context) error {
	customer, err := ctxUser(c)
	if err != nil {
		return err
	}
	views, err := h.orders.CustomerOrders(c.Request().Context(), customer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderListResponse{Orders: nonNil(views)})
}

// Seller lists orders holding the caller's products, restricted to the
// caller's lines.
//
// @Summary      Seller orders
// @Tags         seller
// @Produce      json
// @Success      200  {object}  orderListResponse
// @Router       /seller/orders [get]
func (h *OrderHandler) Seller(c echo.Context) error {
	seller, err := ctxUser(c)
	if err != nil {
		return err
	}
	views, err := h.orders.SellerOrders(c.Request().Context(), seller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderListResponse{Orders: nonNil(views)})
}

// ChangeStatus transitions an order the caller sells into.
//
// @Summary      Change order status
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Order id"
// @Param        body  body      statusRequest  true  "New status"
// @Success      200   {object}  domain.Order
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /seller/orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c echo.Context) error {
	seller, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orders.ChangeStatus(c.Request().Context(), seller, c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}
