package models

import (
	"time"
)

// Store is master data maintained outside this service; the sync engine only
// reads it to know the store universe when emitting explicit zero aggregates.
type Store struct {
	Code   string `gorm:"primaryKey;size:10" json:"code"`
	Name   string `gorm:"size:100" json:"name"`
	Active *bool  `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
