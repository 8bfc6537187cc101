package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Category struct {
	BaseModel
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	ImageURL     string     `json:"image_url"`
	DisplayOrder int        `json:"display_order"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	Items        []MenuItem `json:"items,omitempty"`
}

type MenuItem struct {
	BaseModel
	CategoryID      *uuid.UUID     `gorm:"type:uuid;index" json:"category_id"`
	Category        *Category      `json:"category,omitempty"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Price           float64        `json:"price"`
	DiscountedPrice *float64       `json:"discounted_price"`
	ImageURL        string         `json:"image_url"`
	Ingredients     pq.StringArray `gorm:"type:text[]" json:"ingredients"`
	NutritionInfo   datatypes.JSON `json:"nutrition_info"`
	PreparationTime int            `json:"preparation_time"`
	IsVegetarian    bool           `json:"is_vegetarian"`
	IsSpicy         bool           `json:"is_spicy"`
	IsSignature     bool           `json:"is_signature"`
	IsAvailable     bool           `gorm:"default:true" json:"is_available"`
	DisplayOrder    int            `json:"display_order"`
}

type GalleryImage struct {
	BaseModel
	Title        string `json:"title"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	Category     string `json:"category"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
