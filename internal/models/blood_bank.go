package models

import "gorm.io/gorm"

type BloodBank struct {
	gorm.Model

	Name    string `gorm:"not null"`
	City    string `gorm:"not null"`
	Address string
	Contact string

	// Relationships
	Inventory []BloodInventory `gorm:"foreignKey:BloodBankID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Donations []Donation       `gorm:"foreignKey:BloodBankID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
