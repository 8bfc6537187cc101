package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/middleware"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/services"
	"github.com/example/aurelia/internal/utils"
)

// OfferHandler manages promotional offers and coupon validation.
type OfferHandler struct {
	db     *gorm.DB
	offers *services.OfferService
}

// NewOfferHandler constructs an OfferHandler.
func NewOfferHandler(db *gorm.DB) *OfferHandler {
	return &OfferHandler{db: db, offers: services.NewOfferService(db)}
}

// ListActive returns offers currently visible to customers.
func (h *OfferHandler) ListActive(c *fiber.Ctx) error {
	var offers []models.Offer
	if err := h.db.
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("created_at desc").
		Find(&offers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": offers})
}

type validateOfferRequest struct {
	Code     string  `json:"code" validate:"required"`
	Subtotal float64 `json:"subtotal" validate:"required,gt=0"`
}

// Validate checks a coupon code for the authenticated user and reports the
// discount it would grant.
func (h *OfferHandler) Validate(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req validateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "code and subtotal are required")
	}

	offer, discount, err := h.offers.Validate(c.Context(), userID, req.Code, req.Subtotal)
	if err != nil {
		if isOfferValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"discount": discount,
		"offer": fiber.Map{
			"id":             offer.ID,
			"title":          offer.Title,
			"code":           offer.Code,
			"discount_type":  offer.DiscountType,
			"discount_value": offer.DiscountValue,
		},
	})
}

// AdminList returns every offer.
func (h *OfferHandler) AdminList(c *fiber.Ctx) error {
	var offers []models.Offer
	if err := h.db.Order("created_at desc").Find(&offers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": offers})
}

// AdminCreate persists a new offer.
func (h *OfferHandler) AdminCreate(c *fiber.Ctx) error {
	var payload models.Offer
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Title == "" || payload.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title and code are required")
	}
	if payload.DiscountType != models.DiscountTypePercentage && payload.DiscountType != models.DiscountTypeFixed {
		return fiber.NewError(fiber.StatusBadRequest, "discount_type must be percentage or fixed")
	}

	if err := h.db.Create(&payload).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "offer code already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

// AdminUpdate updates an existing offer.
func (h *OfferHandler) AdminUpdate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var offer models.Offer
	if err := h.db.First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "offer not found")
		}
		return err
	}

	var payload models.Offer
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payload.ID = offer.ID
	if err := h.db.Model(&offer).Updates(payload).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": offer})
}

// AdminDelete removes an offer.
func (h *OfferHandler) AdminDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Offer{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
