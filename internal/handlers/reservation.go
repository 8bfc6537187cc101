package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/middleware"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/services"
	"github.com/example/aurelia/internal/utils"
)

// ReservationHandler manages table reservations.
type ReservationHandler struct {
	db       *gorm.DB
	telegram *services.TelegramService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(db *gorm.DB, telegram *services.TelegramService) *ReservationHandler {
	return &ReservationHandler{db: db, telegram: telegram}
}

type createReservationRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required"`
	PartySize int    `json:"party_size" validate:"required,min=1,max=20"`
	Notes     string `json:"notes"`
}

// Create books a table for the authenticated user.
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid reservation request: "+err.Error())
	}

	reservation := models.Reservation{
		UserID:    &userID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Date:      req.Date,
		Time:      req.Time,
		PartySize: req.PartySize,
		Status:    models.ReservationStatusPending,
		Notes:     req.Notes,
	}

	if err := h.db.Create(&reservation).Error; err != nil {
		return err
	}

	go func() {
		if err := h.telegram.NotifyNewReservation(services.ReservationNotification{
			Name:      reservation.Name,
			Phone:     reservation.Phone,
			Date:      reservation.Date,
			Time:      reservation.Time,
			PartySize: reservation.PartySize,
		}); err != nil {
			log.Printf("[Reservation] Telegram notification failed: %v", err)
		}
	}()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": reservation})
}

// ListOwn returns the authenticated user's reservations.
func (h *ReservationHandler) ListOwn(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var reservations []models.Reservation
	if err := h.db.Where("user_id = ?", userID).
		Order("date desc, time desc").
		Find(&reservations).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": reservations})
}

// AdminList returns all reservations for staff.
func (h *ReservationHandler) AdminList(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Reservation{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var reservations []models.Reservation
	if err := query.Order("date desc, time desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reservations).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    reservations,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type updateReservationStatusRequest struct {
	Status string `json:"status"`
}

var reservationStatuses = map[string]bool{
	models.ReservationStatusPending:   true,
	models.ReservationStatusConfirmed: true,
	models.ReservationStatusCancelled: true,
	models.ReservationStatusCompleted: true,
}

// AdminUpdateStatus sets a reservation's status and notifies the guest.
func (h *ReservationHandler) AdminUpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateReservationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !reservationStatuses[req.Status] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}

	var reservation models.Reservation
	if err := h.db.First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "reservation not found")
		}
		return err
	}

	if err := h.db.Model(&reservation).Update("status", req.Status).Error; err != nil {
		return err
	}

	if reservation.UserID != nil {
		data, _ := models.NotificationData(fiber.Map{
			"reservation_id": reservation.ID.String(),
			"status":         req.Status,
		})
		notification := models.Notification{
			UserID:  reservation.UserID,
			Title:   "Reservation update",
			Message: "Your reservation for " + reservation.Date + " at " + reservation.Time + " is now " + req.Status + ".",
			Type:    "reservation",
			Data:    data,
		}
		if err := h.db.Create(&notification).Error; err != nil {
			log.Printf("[Reservation] failed to create notification for %s: %v", reservation.ID, err)
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "reservation updated"})
}

// AdminDelete removes a reservation.
func (h *ReservationHandler) AdminDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Reservation{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
