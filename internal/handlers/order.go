package handlers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/config"
	"github.com/example/aurelia/internal/middleware"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/services"
	"github.com/example/aurelia/internal/utils"
)

// OrderHandler manages checkout and order lifecycle endpoints.
type OrderHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	offers   *services.OfferService
	telegram *services.TelegramService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(db *gorm.DB, cfg *config.Config, telegram *services.TelegramService) *OrderHandler {
	return &OrderHandler{
		db:       db,
		cfg:      cfg,
		offers:   services.NewOfferService(db),
		telegram: telegram,
	}
}

type checkoutItemRequest struct {
	MenuItemID          string  `json:"menu_item_id" validate:"required,uuid4"`
	Quantity            int     `json:"quantity" validate:"required,min=1"`
	SpecialInstructions string  `json:"special_instructions"`
	ItemName            string  `json:"item_name"`
	ItemPrice           float64 `json:"item_price"`
}

type checkoutRequest struct {
	Items               []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress     string                `json:"delivery_address" validate:"required"`
	DeliveryCity        string                `json:"delivery_city"`
	DeliveryPincode     string                `json:"delivery_pincode"`
	SpecialInstructions string                `json:"special_instructions"`
	CouponCode          string                `json:"coupon_code"`
	LoyaltyPointsUsed   int                   `json:"loyalty_points_used" validate:"min=0"`
}

// Checkout creates an order with its items and a pending payment row. Item
// names and prices are snapshotted from the menu; the client-provided values
// are used only for items no longer on the menu.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid checkout request: "+err.Error())
	}

	order := models.Order{
		UserID:              &userID,
		OrderNumber:         generateOrderNumber(),
		Status:              models.OrderStatusPending,
		DeliveryAddress:     req.DeliveryAddress,
		DeliveryCity:        req.DeliveryCity,
		DeliveryPincode:     req.DeliveryPincode,
		SpecialInstructions: req.SpecialInstructions,
	}

	var subtotal float64
	for _, reqItem := range req.Items {
		menuItemID, err := uuid.Parse(reqItem.MenuItemID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid menu_item_id")
		}

		item := models.OrderItem{
			MenuItemID:          &menuItemID,
			ItemName:            reqItem.ItemName,
			ItemPrice:           reqItem.ItemPrice,
			Quantity:            reqItem.Quantity,
			SpecialInstructions: reqItem.SpecialInstructions,
		}

		var menuItem models.MenuItem
		if err := h.db.First(&menuItem, "id = ?", menuItemID).Error; err == nil {
			item.ItemName = menuItem.Name
			item.ItemPrice = menuItem.Price
			if menuItem.DiscountedPrice != nil {
				item.ItemPrice = *menuItem.DiscountedPrice
			}
		}

		subtotal += item.ItemPrice * float64(item.Quantity)
		order.Items = append(order.Items, item)
	}

	var appliedOffer *models.Offer
	if req.CouponCode != "" {
		offer, discount, err := h.offers.Validate(c.Context(), userID, req.CouponCode, subtotal)
		if err != nil {
			if isOfferValidationError(err) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return err
		}
		appliedOffer = offer
		order.CouponCode = offer.Code
		order.DiscountAmount = discount
	}

	order.Subtotal = subtotal
	order.TaxAmount = round2(subtotal * h.cfg.TaxRate)
	order.DeliveryFee = h.cfg.DeliveryFee
	order.LoyaltyPointsUsed = req.LoyaltyPointsUsed

	// One loyalty point redeems one currency unit, never more than what the
	// order still costs.
	payable := subtotal + order.TaxAmount + order.DeliveryFee - order.DiscountAmount
	if float64(order.LoyaltyPointsUsed) > payable {
		order.LoyaltyPointsUsed = int(payable)
	}
	order.TotalAmount = round2(payable - float64(order.LoyaltyPointsUsed))

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if order.LoyaltyPointsUsed > 0 {
			res := tx.Model(&models.Profile{}).
				Where("user_id = ? AND loyalty_points >= ?", userID, order.LoyaltyPointsUsed).
				Update("loyalty_points", gorm.Expr("loyalty_points - ?", order.LoyaltyPointsUsed))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "not enough loyalty points")
			}
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		payment := models.Payment{
			OrderID:       order.ID,
			Amount:        order.TotalAmount,
			PaymentMethod: "razorpay",
			Status:        models.PaymentStatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if appliedOffer != nil {
			if err := h.offers.Apply(tx, userID, appliedOffer, order.ID); err != nil {
				return err
			}
		}

		// Checkout consumes the cart.
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return err
	}

	go h.notifyNewOrder(order, userID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":              order.ID,
			"order_number":    order.OrderNumber,
			"status":          order.Status,
			"subtotal":        order.Subtotal,
			"tax_amount":      order.TaxAmount,
			"delivery_fee":    order.DeliveryFee,
			"discount_amount": order.DiscountAmount,
			"total_amount":    order.TotalAmount,
		},
	})
}

// ListOrders returns orders for the authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Where("user_id = ?", userID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("Payment").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").Preload("Payment").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// AdminListOrders returns all orders for staff, optionally filtered by status.
func (h *OrderHandler) AdminListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("Payment").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

var allowedStatusTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing: {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:     {models.OrderStatusDelivered},
}

// AdminUpdateOrderStatus moves an order through its lifecycle and notifies
// the customer.
func (h *OrderHandler) AdminUpdateOrderStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if !transitionAllowed(order.Status, req.Status) {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status))
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.OrderStatusDelivered {
		now := time.Now()
		updates["delivered_at"] = &now
	}

	if err := h.db.Model(&order).Updates(updates).Error; err != nil {
		return err
	}

	if order.UserID != nil {
		h.notifyStatusChange(*order.UserID, order, req.Status)
	}

	return c.JSON(fiber.Map{"success": true, "message": "order updated"})
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (h *OrderHandler) notifyStatusChange(userID uuid.UUID, order models.Order, status string) {
	data, _ := models.NotificationData(fiber.Map{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"status":       status,
	})

	notification := models.Notification{
		UserID:  &userID,
		Title:   "Order update",
		Message: fmt.Sprintf("Order %s is now %s.", order.OrderNumber, status),
		Type:    "order",
		Data:    data,
	}
	if err := h.db.Create(&notification).Error; err != nil {
		log.Printf("[Order] failed to create status notification for order %s: %v", order.ID, err)
	}
}

func (h *OrderHandler) notifyNewOrder(order models.Order, userID uuid.UUID) {
	if h.telegram == nil {
		return
	}

	userName := "Not provided"
	userPhone := "Not provided"
	var profile models.Profile
	if err := h.db.First(&profile, "user_id = ?", userID).Error; err == nil {
		if profile.FullName != "" {
			userName = profile.FullName
		}
		if profile.Phone != "" {
			userPhone = profile.Phone
		}
	}

	items := make([]services.OrderItemNotification, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, services.OrderItemNotification{
			Name:     item.ItemName,
			Quantity: item.Quantity,
			Price:    item.ItemPrice,
		})
	}

	if err := h.telegram.NotifyNewOrder(services.OrderNotification{
		OrderNumber: order.OrderNumber,
		Items:       items,
		TotalAmount: order.TotalAmount,
		UserName:    userName,
		UserPhone:   userPhone,
		Status:      order.Status,
	}); err != nil {
		log.Printf("[Order] Telegram notification failed: %v", err)
	}
}

func isOfferValidationError(err error) bool {
	for _, kind := range []error{
		services.ErrOfferNotFound,
		services.ErrOfferInactive,
		services.ErrOfferExpired,
		services.ErrOfferNotStarted,
		services.ErrOfferExhausted,
		services.ErrOfferMinOrder,
		services.ErrOfferNotFirstOrder,
		services.ErrOfferNeedsPoints,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d", time.Now().UnixNano()%1000000000)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
