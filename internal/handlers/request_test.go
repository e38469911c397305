package handlers

import (
	"net/http"
	"testing"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCreateRequest(t *testing.T) {
	setupTestDB(t)
	mailer := installFakeMailer(t)

	requester := createTestUser(t, "hope", types.RoleDonor, "O+")

	c, w := testContext(t, requester, "POST", "/requests",
		gin.H{"blood_group": "O+", "units": 2, "city": "Dhaka"})
	CreateRequest(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, types.StatusPending, response["status"])
	assert.Nil(t, response["approved_by"])

	var stored models.DonationRequest
	assert.NoError(t, db.DB.First(&stored).Error)
	assert.Equal(t, requester.ID, stored.RequesterID)
	assert.Equal(t, uint(2), stored.Units)

	// requester ack only; no other O+ donors exist
	assert.Len(t, mailer.Sent, 1)
	assert.Equal(t, []string{requester.Email}, mailer.Sent[0].To)
}

func TestCreateRequestNotifiesMatchingDonors(t *testing.T) {
	setupTestDB(t)
	mailer := installFakeMailer(t)

	requester := createTestUser(t, "needy", types.RoleHospital, "")
	match := createTestUser(t, "match", types.RoleDonor, "A-")
	createTestUser(t, "other", types.RoleDonor, "B+")
	createTestUser(t, "nonmatchrole", types.RoleHospital, "A-")

	c, w := testContext(t, requester, "POST", "/requests",
		gin.H{"blood_group": "A-", "units": 1})
	CreateRequest(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, mailer.Sent, 2)
	assert.Equal(t, []string{requester.Email}, mailer.Sent[0].To)
	assert.Equal(t, []string{match.Email}, mailer.Sent[1].To)
}

func TestCreateRequestMailFailureIsSwallowed(t *testing.T) {
	setupTestDB(t)
	mailer := installFakeMailer(t)
	mailer.Fail = true

	requester := createTestUser(t, "stoic", types.RoleDonor, "B-")

	c, w := testContext(t, requester, "POST", "/requests",
		gin.H{"blood_group": "B-", "units": 1})
	CreateRequest(c)

	// the lifecycle transition succeeds even though every send failed
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateRequestRejectsInvalidUnits(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	requester := createTestUser(t, "zero", types.RoleDonor, "O-")

	c, w := testContext(t, requester, "POST", "/requests",
		gin.H{"blood_group": "O-", "units": -1})
	CreateRequest(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeBody(t, w)
	errs := response["errors"].(map[string]interface{})
	assert.Contains(t, errs, "units")
}

func TestCreateRequestDuplicatePendingRejected(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	requester := createTestUser(t, "eager", types.RoleDonor, "AB+")

	c, w := testContext(t, requester, "POST", "/requests",
		gin.H{"blood_group": "AB+", "units": 1})
	CreateRequest(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = testContext(t, requester, "POST", "/requests",
		gin.H{"blood_group": "AB+", "units": 3})
	CreateRequest(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeBody(t, w)
	errs := response["errors"].(map[string]interface{})
	assert.Contains(t, errs, "request")

	var count int64
	db.DB.Model(&models.DonationRequest{}).Where("requester_id = ?", requester.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateRequestAllowedAfterDecision(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	requester := createTestUser(t, "repeat", types.RoleDonor, "A+")
	admin := createTestUser(t, "admin", types.RoleAdmin, "")

	c, w := testContext(t, requester, "POST", "/requests",
		gin.H{"blood_group": "A+", "units": 1})
	CreateRequest(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	var request models.DonationRequest
	assert.NoError(t, db.DB.First(&request).Error)

	c, w = testContext(t, admin, "POST", "/requests/1/reject", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	RejectRequest(c)
	assert.Equal(t, http.StatusOK, w.Code)

	// first request resolved, a new pending one is fine
	c, w = testContext(t, requester, "POST", "/requests",
		gin.H{"blood_group": "A+", "units": 2})
	CreateRequest(c)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestApproveRequest(t *testing.T) {
	setupTestDB(t)
	mailer := installFakeMailer(t)

	requester := createTestUser(t, "patient", types.RoleHospital, "")
	admin := createTestUser(t, "admin", types.RoleAdmin, "")

	request := models.DonationRequest{
		RequesterID: requester.ID,
		BloodGroup:  "O+",
		Units:       2,
		Status:      types.StatusPending,
	}
	assert.NoError(t, db.DB.Create(&request).Error)

	c, w := testContext(t, admin, "POST", "/requests/1/approve", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	ApproveRequest(c)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, types.StatusApproved, response["status"])

	var stored models.DonationRequest
	assert.NoError(t, db.DB.First(&stored, request.ID).Error)
	assert.Equal(t, types.StatusApproved, stored.Status)
	assert.Equal(t, admin.ID, *stored.ApprovedByID)

	// requester got the decision mail
	assert.Len(t, mailer.Sent, 1)
	assert.Equal(t, []string{requester.Email}, mailer.Sent[0].To)
}

func TestApproveRequestNotPendingConflicts(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	requester := createTestUser(t, "done", types.RoleDonor, "B+")
	admin := createTestUser(t, "admin", types.RoleAdmin, "")
	second := createTestUser(t, "admin2", types.RoleAdmin, "")

	adminID := admin.ID
	request := models.DonationRequest{
		RequesterID:  requester.ID,
		BloodGroup:   "B+",
		Units:        1,
		Status:       types.StatusApproved,
		ApprovedByID: &adminID,
	}
	assert.NoError(t, db.DB.Create(&request).Error)

	c, w := testContext(t, second, "POST", "/requests/1/approve", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	ApproveRequest(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	// terminal state and original approver untouched
	var stored models.DonationRequest
	assert.NoError(t, db.DB.First(&stored, request.ID).Error)
	assert.Equal(t, types.StatusApproved, stored.Status)
	assert.Equal(t, admin.ID, *stored.ApprovedByID)
}

func TestRejectRequestNotPendingConflicts(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	requester := createTestUser(t, "late", types.RoleDonor, "O-")
	admin := createTestUser(t, "admin", types.RoleAdmin, "")

	request := models.DonationRequest{
		RequesterID: requester.ID,
		BloodGroup:  "O-",
		Units:       1,
		Status:      types.StatusRejected,
	}
	assert.NoError(t, db.DB.Create(&request).Error)

	c, w := testContext(t, admin, "POST", "/requests/1/reject", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	RejectRequest(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMyRequests(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	mine := createTestUser(t, "mine", types.RoleDonor, "A+")
	other := createTestUser(t, "other", types.RoleDonor, "A+")

	assert.NoError(t, db.DB.Create(&models.DonationRequest{
		RequesterID: mine.ID, BloodGroup: "A+", Units: 1, Status: types.StatusPending,
	}).Error)
	assert.NoError(t, db.DB.Create(&models.DonationRequest{
		RequesterID: other.ID, BloodGroup: "A+", Units: 1, Status: types.StatusPending,
	}).Error)

	c, w := testContext(t, mine, "GET", "/requests/mine", nil)
	MyRequests(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var items []map[string]interface{}
	assert.NoError(t, jsonUnmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestListRequestsFilters(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	alice := createTestUser(t, "alice", types.RoleDonor, "A+")
	bob := createTestUser(t, "bob", types.RoleDonor, "B+")

	assert.NoError(t, db.DB.Create(&models.DonationRequest{
		RequesterID: alice.ID, BloodGroup: "A+", Units: 1, City: "Dhaka", Status: types.StatusPending,
	}).Error)
	assert.NoError(t, db.DB.Create(&models.DonationRequest{
		RequesterID: bob.ID, BloodGroup: "B+", Units: 1, City: "Sylhet", Status: types.StatusApproved,
	}).Error)

	c, w := testContext(t, models.User{}, "GET", "/requests?status=pending", nil)
	ListRequests(c)
	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Len(t, response["items"], 1)

	c, w = testContext(t, models.User{}, "GET", "/requests?blood_group=B%2B", nil)
	ListRequests(c)
	response = decodeBody(t, w)
	assert.Len(t, response["items"], 1)

	c, w = testContext(t, models.User{}, "GET", "/requests?search=ali", nil)
	ListRequests(c)
	response = decodeBody(t, w)
	assert.Len(t, response["items"], 1)
}
