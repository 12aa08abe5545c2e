package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/marketly/storefront/internal/core/cart"
	"github.com/marketly/storefront/internal/core/domain"
)

// CartStore is the cart as the cart routes use it.
type CartStore interface {
	AddItem(item domain.CartItem)
	UpdateQuantity(productID string, qty int)
	RemoveItem(productID string)
	Clear()
	Items() []domain.CartItem
	Total() decimal.Decimal
	Hydrate(ctx context.Context, catalog cart.ProductGetter) []string
}

type CartHandler struct {
	cart     CartStore
	products cart.ProductGetter
}

func NewCartHandler(c CartStore, products cart.ProductGetter) *CartHandler {
	return &CartHandler{cart: c, products: products}
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items   []domain.CartItem `json:"items"`
	Total   decimal.Decimal   `json:"total"`
	Count   int               `json:"count"`
	Removed []string          `json:"removed,omitempty"`
}

func (h *CartHandler) render(c echo.Context, removed []string) error {
	items := h.cart.Items()
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return c.JSON(http.StatusOK, cartResponse{
		Items:   nonNil(items),
		Total:   h.cart.Total(),
		Count:   count,
		Removed: removed,
	})
}

// Get refreshes product snapshots and returns the cart. Products that no
// longer exist are dropped and listed under removed.
//
// @Summary      Show the cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cartResponse
// @Router       /cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	removed := h.cart.Hydrate(c.Request().Context(), h.products)
	return h.render(c, removed)
}

// Add puts a product in the cart, merging with an existing entry.
//
// @Summary      Add to cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      addItemRequest  true  "Product and quantity"
// @Success      200   {object}  cartResponse
// @Failure      404   {object}  errorResponse
// @Router       /cart/items [post]
func (h *CartHandler) Add(c echo.Context) error {
	var req addItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p := h.products.GetProduct(c.Request().Context(), req.ProductID)
	if p == nil {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, req.ProductID)
	}
	h.cart.AddItem(domain.CartItem{ProductID: p.ID, Quantity: req.Quantity, Product: p})
	return h.render(c, nil)
}

// SetQuantity changes a line's quantity. Values below 1 become 1.
//
// @Summary      Change quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        product_id  path      string           true  "Product id"
// @Param        body        body      quantityRequest  true  "Quantity"
// @Success      200         {object}  cartResponse
// @Router       /cart/items/{product_id} [patch]
func (h *CartHandler) SetQuantity(c echo.Context) error {
	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	h.cart.UpdateQuantity(c.Param("product_id"), req.Quantity)
	return h.render(c, nil)
}

// Remove drops a line.
//
// @Summary      Remove from cart
// @Tags         cart
// @Produce      json
// @Param        product_id  path      string  true  "Product id"
// @Success      200         {object}  cartResponse
// @Router       /cart/items/{product_id} [delete]
func (h *CartHandler) Remove(c echo.Context) error {
	h.cart.RemoveItem(c.Param("product_id"))
	return h.render(c, nil)
}

// Clear empties the cart.
//
// @Summary      Empty the cart
// @Tags         cart
// @Success      204
// @Router       /cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	h.cart.Clear()
	return c.NoContent(http.StatusNoContent)
}
