package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string
	LastName     string
	Role         string `gorm:"not null;default:donor"`

	// Phone is stored normalized (digits only, country-code prefixed).
	// NULL when the user gave no phone, so the unique index only applies
	// to users that actually have one.
	Phone *string `gorm:"uniqueIndex"`

	City       string
	BloodGroup string `gorm:"size:3"`

	Active         bool `gorm:"not null;default:true"`
	EmailConfirmed bool `gorm:"not null;default:false"`

	// Superuser gates the management console. Deliberately independent
	// of Role == "admin": an app-level admin is not automatically allowed
	// into the console.
	Superuser bool `gorm:"not null;default:false"`

	// Relationships
	Requests  []DonationRequest `gorm:"foreignKey:RequesterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Donations []Donation        `gorm:"foreignKey:DonorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// PhoneString returns the normalized phone or "" when none is set.
func (u *User) PhoneString() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}
