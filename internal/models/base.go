package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timestamps provides shared audit columns for stored documents and rows.
type Timestamps struct {
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewID returns a fresh identifier for users and addresses.
func NewID() string {
	return uuid.NewString()
}

// BeforeCreate ensures UUIDs are generated for new users.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

// BeforeCreate ensures UUIDs are generated for new addresses.
func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}
