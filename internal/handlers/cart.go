package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/middleware"
	"github.com/example/aurelia/internal/models"
)

// CartHandler manages the authenticated user's cart.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// ListItems returns the user's cart with menu item details and totals.
func (h *CartHandler) ListItems(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var items []models.CartItem
	if err := h.db.Preload("MenuItem").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return err
	}

	var subtotal float64
	for _, item := range items {
		if item.MenuItem == nil {
			continue
		}
		price := item.MenuItem.Price
		if item.MenuItem.DiscountedPrice != nil {
			price = *item.MenuItem.DiscountedPrice
		}
		subtotal += price * float64(item.Quantity)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"data":     items,
		"subtotal": subtotal,
	})
}

type addCartItemRequest struct {
	MenuItemID          string `json:"menu_item_id"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions"`
}

// AddItem puts a menu item in the cart; adding an item already present bumps
// its quantity instead of duplicating the row.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	menuItemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid menu_item_id")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	var menuItem models.MenuItem
	if err := h.db.First(&menuItem, "id = ? AND is_available = ?", menuItemID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "menu item not available")
		}
		return err
	}

	var item models.CartItem
	err = h.db.Where("user_id = ? AND menu_item_id = ?", userID, menuItemID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if req.SpecialInstructions != "" {
			item.SpecialInstructions = req.SpecialInstructions
		}
		if err := h.db.Save(&item).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			UserID:              userID,
			MenuItemID:          menuItemID,
			Quantity:            req.Quantity,
			SpecialInstructions: req.SpecialInstructions,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
	default:
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

type updateCartItemRequest struct {
	Quantity            *int    `json:"quantity"`
	SpecialInstructions *string `json:"special_instructions"`
}

// UpdateItem changes quantity or instructions of a cart row. Quantity zero
// removes the row.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var item models.CartItem
	if err := h.db.First(&item, "id = ? AND user_id = ?", itemID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "cart item not found")
		}
		return err
	}

	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			if err := h.db.Delete(&item).Error; err != nil {
				return err
			}
			return c.JSON(fiber.Map{"success": true, "message": "cart item removed"})
		}
		item.Quantity = *req.Quantity
	}
	if req.SpecialInstructions != nil {
		item.SpecialInstructions = *req.SpecialInstructions
	}

	if err := h.db.Save(&item).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// RemoveItem deletes one cart row.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart item removed"})
}

// Clear empties the user's cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart cleared"})
}
