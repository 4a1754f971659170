package models

import (
	"time"

	"gorm.io/gorm"
)

// Base contains common columns for audited entity tables. Identifiers are
// generated by the database, so a zero ID means the row was never stored.
type Base struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
