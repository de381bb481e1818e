package models

import (
	"time"
)

// User represents a registered customer. Addresses and orders are embedded
// in the document store and live in child tables in postgres.
type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" bson:"_id" json:"id"`
	Name         string     `bson:"name" json:"name"`
	Email        string     `gorm:"uniqueIndex" bson:"email" json:"email"`
	PasswordHash string     `bson:"passwordHash" json:"-"`
	Addresses    []Address  `gorm:"constraint:OnDelete:CASCADE" bson:"addresses" json:"addresses"`
	Orders       []Order    `gorm:"constraint:OnDelete:CASCADE" bson:"orders" json:"orders"`
	OTP          string     `bson:"otp,omitempty" json:"-"`
	OTPExpiry    *time.Time `bson:"otpExpiry,omitempty" json:"-"`
	Timestamps   `bson:",inline"`
}

// FindOrder returns the embedded order with the given identifier.
func (u *User) FindOrder(orderID string) (*Order, bool) {
	for i := range u.Orders {
		if u.Orders[i].OrderID == orderID {
			return &u.Orders[i], true
		}
	}
	return nil, false
}

// HasAddress reports whether an address with the same line1 and zip is stored.
func (u *User) HasAddress(addr Address) bool {
	for _, existing := range u.Addresses {
		if existing.SameLocation(addr) {
			return true
		}
	}
	return false
}
