package models

import "gorm.io/gorm"

// DonationRequest moves pending -> approved | rejected, each exactly
// once. A partial unique index created in db.MigrateDatabase keeps a
// requester from holding two pending requests at the same time.
type DonationRequest struct {
	gorm.Model

	RequesterID uint `gorm:"not null;index"`
	Requester   User `gorm:"foreignKey:RequesterID"`

	BloodGroup string `gorm:"size:3;not null"`
	Units      uint   `gorm:"not null"`
	City       string
	Status     string `gorm:"not null;default:pending;index"`

	ApprovedByID *uint
	ApprovedBy   *User `gorm:"foreignKey:ApprovedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
