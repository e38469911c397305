package models

import "gorm.io/gorm"

// BloodInventory is a manually maintained ledger row: one per
// (bank, group) pair. Donations do not reconcile into it.
type BloodInventory struct {
	gorm.Model

	BloodBankID uint      `gorm:"not null;uniqueIndex:idx_bank_group"`
	BloodBank   BloodBank `gorm:"foreignKey:BloodBankID"`
	BloodGroup  string    `gorm:"size:3;not null;uniqueIndex:idx_bank_group"`
	Units       uint      `gorm:"not null;default:0"`
}
