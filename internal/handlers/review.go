package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/middleware"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/utils"
)

// ReviewHandler manages customer reviews and their moderation.
type ReviewHandler struct {
	db *gorm.DB
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

// ListApproved returns approved reviews, optionally for one menu item.
func (h *ReviewHandler) ListApproved(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Review{}).Where("is_approved = ?", true)

	if menuItemID := c.Query("menu_item_id"); menuItemID != "" {
		parsed, err := uuid.Parse(menuItemID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid menu_item_id")
		}
		query = query.Where("menu_item_id = ?", parsed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var reviews []models.Review
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    reviews,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type createReviewRequest struct {
	MenuItemID string   `json:"menu_item_id"`
	OrderID    string   `json:"order_id"`
	Rating     int      `json:"rating"`
	Comment    string   `json:"comment"`
	ImageURLs  []string `json:"image_urls"`
}

// Create submits a review; it stays hidden until approved by staff.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	review := models.Review{
		UserID:    &userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		ImageURLs: req.ImageURLs,
	}

	if req.MenuItemID != "" {
		id, err := uuid.Parse(req.MenuItemID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid menu_item_id")
		}
		review.MenuItemID = &id
	}
	if req.OrderID != "" {
		id, err := uuid.Parse(req.OrderID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid order_id")
		}
		review.OrderID = &id
	}

	if err := h.db.Create(&review).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
}

// AdminList returns every review for moderation.
func (h *ReviewHandler) AdminList(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Review{})

	if approved := c.Query("approved"); approved != "" {
		query = query.Where("is_approved = ?", approved == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var reviews []models.Review
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    reviews,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type moderateReviewRequest struct {
	IsApproved *bool   `json:"is_approved"`
	AdminReply *string `json:"admin_reply"`
}

// AdminModerate approves a review or attaches a staff reply.
func (h *ReviewHandler) AdminModerate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req moderateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.IsApproved != nil {
		updates["is_approved"] = *req.IsApproved
	}
	if req.AdminReply != nil {
		updates["admin_reply"] = *req.AdminReply
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	res := h.db.Model(&models.Review{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "review not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "review updated"})
}

// AdminDelete removes a review.
func (h *ReviewHandler) AdminDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Review{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
