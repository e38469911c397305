package models

import "gorm.io/gorm"

// Donation records a donor contribution. Approved flips false -> true
// exactly once; the bank reference survives as NULL when the bank is
// deleted so donation history outlives bank removal.
type Donation struct {
	gorm.Model

	DonorID uint `gorm:"not null;index"`
	Donor   User `gorm:"foreignKey:DonorID"`

	BloodBankID *uint
	BloodBank   *BloodBank `gorm:"foreignKey:BloodBankID"`

	BloodGroup string `gorm:"size:3;not null"`
	Units      uint   `gorm:"not null;default:1"`

	Approved bool `gorm:"not null;default:false;index"`

	ApprovedByID *uint
	ApprovedBy   *User `gorm:"foreignKey:ApprovedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
