package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/config"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/services"
	"github.com/example/aurelia/internal/utils"
)

// PhoneAuthHandler exposes widget-based phone sign-in.
type PhoneAuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	identity *services.IdentityService
}

// NewPhoneAuthHandler constructs a PhoneAuthHandler.
func NewPhoneAuthHandler(db *gorm.DB, cfg *config.Config) *PhoneAuthHandler {
	return &PhoneAuthHandler{
		db:       db,
		cfg:      cfg,
		identity: services.NewIdentityService(db, cfg),
	}
}

type verifyPhoneRequest struct {
	UserJSONURL string `json:"user_json_url"`
	RedirectTo  string `json:"redirect_to"`
}

// VerifyPhone consumes the verification widget's JSON document, reconciles
// the phone number to one identity and returns a one-time sign-in token.
func (h *PhoneAuthHandler) VerifyPhone(c *fiber.Ctx) error {
	var req verifyPhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.UserJSONURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_json_url is required"})
	}

	result, err := h.identity.Reconcile(c.Context(), req.UserJSONURL, req.RedirectTo)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVerificationFetch):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to verify phone number",
			})
		case errors.Is(err, services.ErrIdentityConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   "Login failed",
				"details": "Phone is already registered. Please contact support.",
			})
		case errors.Is(err, services.ErrIdentityCreation):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to create user account",
				"details": err.Error(),
			})
		case errors.Is(err, services.ErrTokenIssuance):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to generate login link",
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"phone":       result.Phone,
		"user_id":     result.UserID,
		"is_new_user": result.IsNewUser,
		"first_name":  result.FirstName,
		"last_name":   result.LastName,
		"token_hash":  result.OneTimeToken,
		"action_link": result.ActionLink,
		"email":       result.Email,
		"message":     "Phone verified successfully",
	})
}

type createSessionRequest struct {
	TokenHash string `json:"token_hash"`
}

// CreateSession redeems a one-time sign-in token for a session JWT. The token
// may arrive in the body (client redemption) or as a query parameter (direct
// action link).
func (h *PhoneAuthHandler) CreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	_ = c.BodyParser(&req)

	token := req.TokenHash
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token_hash is required"})
	}

	userID, err := h.identity.RedeemLoginToken(c.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrTokenInvalid) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired sign-in token"})
		}
		return err
	}

	sessionToken, err := utils.GenerateToken(h.cfg.JWTSecret, userID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   sessionToken,
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"phone":      user.Phone,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
	})
}
