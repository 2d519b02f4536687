package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mwauth "github.com/mkudrin/photostore/internal/middleware/auth"
	"github.com/mkudrin/photostore/internal/models"
)

type CartHandler struct {
	DB *gorm.DB
}

// principalID pulls the authenticated user's id out of the request context.
// Routes using it sit behind RequireAuth, so a miss means a wiring bug.
func principalID(c echo.Context) (uuid.UUID, error) {
	p := mwauth.Principal(c)
	if p == nil {
		return uuid.Nil, errors.New("no principal")
	}
	return uuid.Parse(p.UserID)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := principalID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var total float64
	for _, item := range items {
		var photo models.Photo
		if err := h.DB.First(&photo, item.PhotoID).Error; err == nil {
			total += photo.Price * float64(item.Quantity)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := principalID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		PhotoID  uint `json:"photo_id"`
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var photo models.Photo
	if err := h.DB.First(&photo, req.PhotoID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "photo not found")
	}

	var item models.CartItem
	err = h.DB.Where("user_id = ? AND photo_id = ?", userID, req.PhotoID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{UserID: userID, PhotoID: req.PhotoID, Quantity: req.Quantity}
		if err := h.DB.Create(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, err := principalID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.NoContent(http.StatusNoContent)
}
