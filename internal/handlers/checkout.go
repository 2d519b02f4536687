package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mkudrin/photostore/internal/events"
	"github.com/mkudrin/photostore/internal/fulfillment"
	"github.com/mkudrin/photostore/internal/logging"
	"github.com/mkudrin/photostore/internal/models"
)

type CheckoutHandler struct {
	DB          *gorm.DB
	Fulfillment *fulfillment.Client
	Producer    *events.Producer
}

func (h *CheckoutHandler) cartToQuoteItems(userID uuid.UUID) ([]fulfillment.QuoteItem, []models.CartItem, error) {
	var cartItems []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
		return nil, nil, err
	}

	items := make([]fulfillment.QuoteItem, 0, len(cartItems))
	for _, ci := range cartItems {
		var photo models.Photo
		if err := h.DB.First(&photo, ci.PhotoID).Error; err != nil {
			continue
		}
		items = append(items, fulfillment.QuoteItem{
			PhotoID:   ci.PhotoID,
			Quantity:  ci.Quantity,
			UnitPrice: photo.Price,
		})
	}
	return items, cartItems, nil
}

// Quote passes the cart through the framing API's pricing endpoint.
func (h *CheckoutHandler) Quote(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout_quote")

	userID, err := principalID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	items, _, err := h.cartToQuoteItems(userID)
	if err != nil {
		l.Error("quote_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	quote, err := h.Fulfillment.Quote(ctx, fulfillment.QuoteRequest{Items: items})
	if err != nil {
		l.Error("quote_failed", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "fulfillment unavailable")
	}

	return c.JSON(http.StatusOK, echo.Map{"quote": quote})
}

// CreateOrder snapshots the cart into an order, submits it to the framing API
// and clears the cart.
func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout_order")

	userID, err := principalID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	items, cartItems, err := h.cartToQuoteItems(userID)
	if err != nil {
		l.Error("order_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	order := models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: models.OrderStatusNew,
	}
	for _, it := range items {
		line := float64(it.Quantity) * it.UnitPrice
		order.Total += line
		order.Items = append(order.Items, models.OrderItem{
			OrderID:   order.ID,
			PhotoID:   it.PhotoID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: line,
		})
	}

	if err := h.DB.Create(&order).Error; err != nil {
		l.Error("order_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	ext, err := h.Fulfillment.SubmitOrder(ctx, fulfillment.OrderRequest{
		Reference: order.ID.String(),
		Items:     items,
	})
	if err != nil {
		l.Error("order_submit_failed", "status", 502, "order_id", order.ID, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "fulfillment unavailable")
	}

	order.Status = models.OrderStatusSubmitted
	order.ExternalID = ext.ExternalID
	if err := h.DB.Save(&order).Error; err != nil {
		l.Error("order_update_failed", "status", 500, "order_id", order.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if len(cartItems) > 0 {
		if err := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			l.Error("cart_clear_failed", "order_id", order.ID, "error", err)
		}
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(pubCtx, events.TopicOrderEvents, order.ID.String(), map[string]any{
		"type":    "order_submitted",
		"orderID": order.ID,
		"userID":  userID,
		"total":   order.Total,
	}); err != nil {
		l.Error("kafka publish failed", "error", err)
	}

	l.Info("order_created", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, echo.Map{"order": order})
}

func (h *CheckoutHandler) GetOrders(c echo.Context) error {
	userID, err := principalID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var orders []models.Order
	if err := h.DB.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": orders})
}
