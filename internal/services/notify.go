package services

import (
	"fmt"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/sirupsen/logrus"
)

// sendQuietly is the fire-and-forget path used by every lifecycle
// notification: delivery failures are logged and discarded so a mail
// outage can never block or roll back a state transition.
func sendQuietly(to []string, subject, body string) {
	if len(to) == 0 {
		return
	}
	if err := mailer.Send(to, subject, body); err != nil {
		logrus.WithError(err).WithField("subject", subject).Warn("notification delivery failed")
	}
}

func placeOrArea(city string) string {
	if city == "" {
		return "your area"
	}
	return city
}

// NotifyRequestReceived acknowledges a new donation request to its
// requester and alerts every donor with the exact same blood group and
// a non-empty email.
func NotifyRequestReceived(request models.DonationRequest, requester models.User) {
	subject := fmt.Sprintf("Your blood request: %s x%d received", request.BloodGroup, request.Units)
	body := fmt.Sprintf(
		"Hi %s, your request for %d unit(s) of %s in %s has been received. We'll notify matching donors.",
		requester.Username, request.Units, request.BloodGroup, placeOrArea(request.City))
	sendQuietly([]string{requester.Email}, subject, body)

	var donors []models.User
	if err := db.DB.
		Where("role = ? AND blood_group = ? AND email <> ''", types.RoleDonor, request.BloodGroup).
		Find(&donors).Error; err != nil {
		logrus.WithError(err).Warn("donor alert: failed to resolve recipients")
		return
	}

	var emails []string
	for _, donor := range donors {
		if donor.Email != "" {
			emails = append(emails, donor.Email)
		}
	}
	if len(emails) == 0 {
		return
	}

	alertSubject := fmt.Sprintf("Donor Alert: %s needed", request.BloodGroup)
	alertBody := fmt.Sprintf(
		"A new blood request has been submitted by %s for %d unit(s) of %s in %s.",
		requester.Username, request.Units, request.BloodGroup, placeOrArea(request.City))
	sendQuietly(emails, alertSubject, alertBody)
}

// NotifyRequestDecision tells the requester their request was approved
// or rejected.
func NotifyRequestDecision(request models.DonationRequest, requester models.User) {
	decision := "approved"
	if request.Status == types.StatusRejected {
		decision = "rejected"
	}

	subject := fmt.Sprintf("Request %s: %s", decision, request.BloodGroup)
	body := fmt.Sprintf("Your request for %d unit(s) of %s has been %s.",
		request.Units, request.BloodGroup, decision)
	sendQuietly([]string{requester.Email}, subject, body)
}

// NotifyDonationApproved tells the donor their contribution was
// accepted.
func NotifyDonationApproved(donation models.Donation, donor models.User) {
	bankName := "the selected blood bank"
	if donation.BloodBank != nil {
		bankName = donation.BloodBank.Name
	}

	body := fmt.Sprintf("Hi %s, your donation of %d unit(s) of %s to %s has been approved.",
		donor.Username, donation.Units, donation.BloodGroup, bankName)
	sendQuietly([]string{donor.Email}, "Your donation has been approved", body)
}
