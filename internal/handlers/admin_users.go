package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/utils"
)

// AdminUserHandler lets staff inspect accounts and manage roles.
type AdminUserHandler struct {
	db *gorm.DB
}

// NewAdminUserHandler constructs an AdminUserHandler.
func NewAdminUserHandler(db *gorm.DB) *AdminUserHandler {
	return &AdminUserHandler{db: db}
}

// ListUsers returns paginated users with their roles.
func (h *AdminUserHandler) ListUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(email) LIKE LOWER(?) OR phone LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Preload("Roles").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetUser returns one user with profile and roles.
func (h *AdminUserHandler) GetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	var profile models.Profile
	_ = h.db.Where("user_id = ?", id).First(&profile).Error

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"user":    user,
		"profile": profile,
	}})
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

var assignableRoles = map[string]bool{
	models.RoleAdmin:     true,
	models.RoleModerator: true,
	models.RoleUser:      true,
}

// AssignRole grants a role to a user. Granting an already-held role is a
// no-op.
func (h *AdminUserHandler) AssignRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req assignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !assignableRoles[req.Role] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid role")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	role := models.UserRole{UserID: user.ID, Role: req.Role}
	if err := h.db.Create(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(fiber.Map{"success": true, "message": "role already assigned"})
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": role})
}

// RevokeRole removes a role from a user.
func (h *AdminUserHandler) RevokeRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	role := c.Params("role")
	if !assignableRoles[role] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid role")
	}

	if err := h.db.Where("user_id = ? AND role = ?", id, role).
		Delete(&models.UserRole{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "role revoked"})
}
