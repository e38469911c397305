package types

import "time"

type UserResponse struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	BloodGroup string `json:"blood_group"`
	Active     bool   `json:"active"`
}

type BloodBankResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

type InventoryResponse struct {
	ID          uint   `json:"id"`
	BloodBankID uint   `json:"blood_bank"`
	BloodGroup  string `json:"blood_group"`
	Units       uint   `json:"units"`
}

type DonationRequestResponse struct {
	ID           uint         `json:"id"`
	Requester    UserResponse `json:"requester"`
	BloodGroup   string       `json:"blood_group"`
	Units        uint         `json:"units"`
	City         string       `json:"city"`
	Status       string       `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	ApprovedByID *uint        `json:"approved_by"`
}

type DonationResponse struct {
	ID           uint         `json:"id"`
	Donor        UserResponse `json:"donor"`
	BloodBankID  *uint        `json:"blood_bank"`
	BloodGroup   string       `json:"blood_group"`
	Units        uint         `json:"units"`
	Date         time.Time    `json:"date"`
	Approved     bool         `json:"approved"`
	ApprovedByID *uint        `json:"approved_by"`
}

// Page wraps a list payload with the pagination metadata the list
// endpoints return.
type Page struct {
	Items      any   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalCount int64 `json:"total_count"`
}
