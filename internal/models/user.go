package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Email   string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Name    string `gorm:"type:varchar(255)" json:"name"`
	IsAdmin bool   `gorm:"default:false" json:"is_admin"`

	// Relationships
	Purchases []Purchase `gorm:"foreignKey:UserID" json:"purchases,omitempty"`
}
