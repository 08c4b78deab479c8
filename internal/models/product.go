package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name  string          `gorm:"type:varchar(255)" json:"name"`
	Price decimal.Decimal `gorm:"type:decimal(15,2)" json:"price"`

	// Relationships
	Options []ProductOption `gorm:"foreignKey:ProductID" json:"options,omitempty"`
}

// ProductOption is one sellable variant of a product. Color and size are
// explicit columns so stock mutation on a specific combination is type-checked
// instead of matched against a serialized option blob.
type ProductOption struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ProductID uint   `gorm:"index" json:"product_id"`
	Color     string `gorm:"type:varchar(50)" json:"color"`
	Size      string `gorm:"type:varchar(50)" json:"size"`
	Stock     int    `gorm:"not null;default:0" json:"stock"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
