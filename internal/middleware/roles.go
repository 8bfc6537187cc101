package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/models"
)

// RequireRole gates a route on the authenticated user holding one of the
// given roles. Must run after AuthMiddleware.
func RequireRole(db *gorm.DB, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		has, err := HasRole(db, userID, roles...)
		if err != nil {
			return err
		}
		if !has {
			return fiber.NewError(fiber.StatusForbidden, "insufficient privileges")
		}

		return c.Next()
	}
}

// HasRole reports whether the user holds any of the given roles.
func HasRole(db *gorm.DB, userID uuid.UUID, roles ...string) (bool, error) {
	var count int64
	err := db.Model(&models.UserRole{}).
		Where("user_id = ? AND role IN ?", userID, roles).
		Count(&count).Error
	return count > 0, err
}
