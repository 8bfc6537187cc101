package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/utils"
)

// MenuHandler manages categories, menu items and the gallery.
type MenuHandler struct {
	db *gorm.DB
}

// NewMenuHandler constructs a MenuHandler.
func NewMenuHandler(db *gorm.DB) *MenuHandler {
	return &MenuHandler{db: db}
}

// ListCategories returns categories ordered for display. Inactive categories
// are included only when requested (admin views).
func (h *MenuHandler) ListCategories(c *fiber.Ctx) error {
	query := h.db.Model(&models.Category{})
	if c.Query("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var categories []models.Category
	if err := query.Order("display_order asc, name asc").Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// CreateCategory persists a new category.
func (h *MenuHandler) CreateCategory(c *fiber.Ctx) error {
	var payload models.Category
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	if err := h.db.Create(&payload).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

// UpdateCategory updates an existing category.
func (h *MenuHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	var payload models.Category
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payload.ID = category.ID
	if err := h.db.Model(&category).Updates(payload).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category by ID.
func (h *MenuHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListMenuItems returns paginated menu items with optional filters.
func (h *MenuHandler) ListMenuItems(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.MenuItem{})

	if c.Query("include_unavailable") != "true" {
		query = query.Where("is_available = ?", true)
	}
	if categoryID := strings.TrimSpace(c.Query("category_id")); categoryID != "" {
		parsed, err := uuid.Parse(categoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		query = query.Where("category_id = ?", parsed)
	}
	if c.Query("vegetarian") == "true" {
		query = query.Where("is_vegetarian = ?", true)
	}
	if c.Query("spicy") == "true" {
		query = query.Where("is_spicy = ?", true)
	}
	if c.Query("signature") == "true" {
		query = query.Where("is_signature = ?", true)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var items []models.MenuItem
	if err := query.Preload("Category").
		Order("display_order asc, name asc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetMenuItem returns a single menu item by ID.
func (h *MenuHandler) GetMenuItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var item models.MenuItem
	if err := h.db.Preload("Category").First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "menu item not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// CreateMenuItem persists a new menu item.
func (h *MenuHandler) CreateMenuItem(c *fiber.Ctx) error {
	var payload models.MenuItem
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Name == "" || payload.Price <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "name and a positive price are required")
	}

	if err := h.db.Create(&payload).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

// UpdateMenuItem updates an existing menu item.
func (h *MenuHandler) UpdateMenuItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var item models.MenuItem
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "menu item not found")
		}
		return err
	}

	var payload models.MenuItem
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payload.ID = item.ID
	if err := h.db.Model(&item).Updates(payload).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// DeleteMenuItem removes a menu item by ID.
func (h *MenuHandler) DeleteMenuItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.MenuItem{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListGallery returns active gallery images ordered for display.
func (h *MenuHandler) ListGallery(c *fiber.Ctx) error {
	query := h.db.Model(&models.GalleryImage{})
	if c.Query("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}

	var images []models.GalleryImage
	if err := query.Order("display_order asc, created_at desc").Find(&images).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": images})
}

// CreateGalleryImage persists a new gallery image.
func (h *MenuHandler) CreateGalleryImage(c *fiber.Ctx) error {
	var payload models.GalleryImage
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if payload.ImageURL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "image_url is required")
	}

	if err := h.db.Create(&payload).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

// UpdateGalleryImage updates an existing gallery image.
func (h *MenuHandler) UpdateGalleryImage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var image models.GalleryImage
	if err := h.db.First(&image, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "gallery image not found")
		}
		return err
	}

	var payload models.GalleryImage
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payload.ID = image.ID
	if err := h.db.Model(&image).Updates(payload).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": image})
}

// DeleteGalleryImage removes a gallery image by ID.
func (h *MenuHandler) DeleteGalleryImage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.GalleryImage{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
