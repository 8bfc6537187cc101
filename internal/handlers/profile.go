package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/middleware"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/utils"
)

// ProfileHandler manages the user's profile and notifications.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated user's profile, creating an empty one
// on first access.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var profile models.Profile
	err := h.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.Profile{UserID: userID}
		if err := h.db.Create(&profile).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}

type updateProfileRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	Pincode   *string `json:"pincode"`
}

// UpdateProfile updates profile fields. Loyalty balance and order counters
// are maintained by the settlement flow and cannot be set here.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		updates["phone"] = utils.NormalizePhone(*req.Phone)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Pincode != nil {
		updates["pincode"] = *req.Pincode
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}
	updates["updated_at"] = time.Now()

	if err := h.db.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "profile updated"})
}

// GetLoyalty summarizes the loyalty balance and points history per order.
func (h *ProfileHandler) GetLoyalty(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var profile models.Profile
	if err := h.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
				"loyalty_points": 0,
				"total_orders":   0,
				"history":        []fiber.Map{},
			}})
		}
		return err
	}

	var orders []models.Order
	if err := h.db.
		Where("user_id = ? AND loyalty_points_earned > 0", userID).
		Order("created_at desc").
		Limit(50).
		Find(&orders).Error; err != nil {
		return err
	}

	history := make([]fiber.Map, 0, len(orders))
	for _, order := range orders {
		history = append(history, fiber.Map{
			"order_id":      order.ID,
			"order_number":  order.OrderNumber,
			"points_earned": order.LoyaltyPointsEarned,
			"points_used":   order.LoyaltyPointsUsed,
			"created_at":    order.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"loyalty_points": profile.LoyaltyPoints,
		"total_orders":   profile.TotalOrders,
		"history":        history,
	}})
}

// ListNotifications returns the user's notifications, newest first.
func (h *ProfileHandler) ListNotifications(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var notifications []models.Notification
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&notifications).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    notifications,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// MarkNotificationRead marks one notification as read.
func (h *ProfileHandler) MarkNotificationRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	res := h.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "notification not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "notification marked read"})
}
