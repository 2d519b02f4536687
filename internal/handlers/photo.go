package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mkudrin/photostore/internal/blobstore"
	"github.com/mkudrin/photostore/internal/events"
	"github.com/mkudrin/photostore/internal/logging"
	"github.com/mkudrin/photostore/internal/models"
	"github.com/mkudrin/photostore/internal/util"
)

type PhotoHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	Blobs    *blobstore.Store
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *PhotoHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicPhotoEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *PhotoHandler) GetPhoto(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var photo models.Photo
	if err := h.DB.First(&photo, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "photo not found")
	}

	resp := echo.Map{"photo": photo}
	if h.Blobs != nil && photo.StorageKey != "" {
		if url, err := h.Blobs.PresignDownload(c.Request().Context(), photo.StorageKey); err == nil {
			resp["downloadUrl"] = url
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PhotoHandler) GetPhotos(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Photo{})
	if cat := c.QueryParam("category"); cat != "" {
		if catID, err := strconv.Atoi(cat); err == nil {
			q = q.Where("category_id = ?", catID)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var items []models.Photo
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

func (h *PhotoHandler) CreatePhoto(c echo.Context) error {
	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		CategoryID  uint    `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" || req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "title required and price must be >= 0")
	}

	photo := models.Photo{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
	}

	// Reserve the storage slot first so the client can upload directly.
	var uploadURL string
	if h.Blobs != nil {
		key, url, err := h.Blobs.PresignUpload(c.Request().Context())
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		photo.StorageKey = key
		uploadURL = url
	}

	if err := h.DB.Create(&photo).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, strconv.FormatUint(uint64(photo.ID), 10), map[string]any{
		"type":    "photo_created",
		"photoID": photo.ID,
		"title":   photo.Title,
	})

	resp := echo.Map{"photo": photo}
	if uploadURL != "" {
		resp["uploadUrl"] = uploadURL
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *PhotoHandler) PatchPhoto(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		CategoryID  *uint    `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var photo models.Photo
	if err := h.DB.First(&photo, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "photo not found")
	}

	if req.Title != nil {
		photo.Title = *req.Title
	}
	if req.Description != nil {
		photo.Description = *req.Description
	}
	if req.Price != nil {
		photo.Price = *req.Price
	}
	if req.CategoryID != nil {
		photo.CategoryID = *req.CategoryID
	}

	if err := h.DB.Save(&photo).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, strconv.Itoa(id), map[string]any{
		"type":    "photo_updated",
		"photoID": photo.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"photo": photo})
}

func (h *PhotoHandler) DeletePhoto(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Delete(&models.Photo{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, strconv.Itoa(id), map[string]any{
		"type":    "photo_deleted",
		"photoID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
