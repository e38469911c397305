// Package validation holds the pure field validators: plain structs in,
// field-keyed error maps out. Handlers add store-dependent checks
// (duplicates, pending-request existence) on top using the same map.
package validation

import (
	"strings"

	"github.com/bloodlink-dev/bloodlink/internal/types"
)

// Errors maps a field name to a human-readable problem with it.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, taken := e[field]; !taken {
		e[field] = message
	}
}

func (e Errors) Empty() bool { return len(e) == 0 }

// RegistrationInput mirrors the fields accepted at registration.
// Phone is expected raw; Validate normalizes it in place.
type RegistrationInput struct {
	Username   string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Role       string
	Phone      string
	City       string
	BloodGroup string
}

// ValidateRegistration checks the field-level rules. The role is
// limited to donor and hospital: admin is rejected no matter what the
// caller sent.
func ValidateRegistration(in *RegistrationInput) Errors {
	errs := Errors{}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = NormalizePhone(in.Phone)

	if in.Username == "" {
		errs.Add("username", "username is required")
	}
	if in.Email == "" {
		errs.Add("email", "email is required")
	} else if !strings.Contains(in.Email, "@") {
		errs.Add("email", "enter a valid email address")
	}
	if len(in.Password) < 6 {
		errs.Add("password", "password must be at least 6 characters")
	}

	if in.Role == "" {
		in.Role = types.RoleDonor
	}
	if in.Role != types.RoleDonor && in.Role != types.RoleHospital {
		errs.Add("role", "role must be donor or hospital")
	}

	if in.BloodGroup != "" && !types.IsValidBloodGroup(in.BloodGroup) {
		errs.Add("blood_group", "unknown blood group")
	}

	return errs
}

// RequestInput is what a caller may set when opening a donation request.
type RequestInput struct {
	BloodGroup string
	Units      int
	City       string
}

func ValidateRequest(in *RequestInput) Errors {
	errs := Errors{}

	if !types.IsValidBloodGroup(in.BloodGroup) {
		errs.Add("blood_group", "unknown blood group")
	}
	if in.Units <= 0 {
		errs.Add("units", "units must be > 0")
	}

	return errs
}

// DonationInput is what a caller may set when recording a donation.
type DonationInput struct {
	BloodBankID *uint
	BloodGroup  string
	Units       int
}

func ValidateDonation(in *DonationInput) Errors {
	errs := Errors{}

	if !types.IsValidBloodGroup(in.BloodGroup) {
		errs.Add("blood_group", "unknown blood group")
	}
	if in.Units < 1 {
		errs.Add("units", "units must be >= 1")
	}

	return errs
}
