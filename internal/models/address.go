package models

import "time"

// Address is an address book entry owned by exactly one user.
type Address struct {
	ID     string `gorm:"type:uuid;primaryKey" bson:"_id" json:"id"`
	UserID string `gorm:"type:uuid;uniqueIndex:idx_address_location" bson:"-" json:"-"`
	Name   string `bson:"name" json:"name"`
	Line1  string `gorm:"uniqueIndex:idx_address_location" bson:"line1" json:"line1"`
	City   string `bson:"city" json:"city"`
	State  string `bson:"state" json:"state"`
	Zip    string `gorm:"uniqueIndex:idx_address_location" bson:"zip" json:"zip"`
	Phone  string `bson:"phone" json:"phone"`

	CreatedAt time.Time `gorm:"index" bson:"-" json:"-"`
}

// SameLocation compares the fields that identify a duplicate address.
func (a Address) SameLocation(other Address) bool {
	return a.Line1 == other.Line1 && a.Zip == other.Zip
}
