package model

import "github.com/shopspring/decimal"

type Product struct {
	CatalogModel
	SKU         *string         `gorm:"type:varchar(50);uniqueIndex" json:"sku,omitempty"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price" validate:"gte=0"`
	Stock       int             `gorm:"default:0" json:"stock" validate:"gte=0"`
	Image       string          `gorm:"type:varchar(500)" json:"image"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`

	CategoryID *uint     `gorm:"index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
