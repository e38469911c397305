package handlers

import (
	"net/http"
	"testing"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func registerBody(username, email, phone string) gin.H {
	return gin.H{
		"username": username,
		"email":    email,
		"password": "pass1234",
		"phone":    phone,
	}
}

func TestRegisterUser(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	c, w := testContext(t, models.User{}, "POST", "/users",
		registerBody("newuser", "new@example.com", "01712345678"))
	CreateUser(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	assert.NoError(t, db.DB.Where("username = ?", "newuser").First(&user).Error)
	assert.Equal(t, types.RoleDonor, user.Role)
	assert.True(t, user.Active)
	assert.Equal(t, "8801712345678", user.PhoneString())

	// password is hashed, never stored raw
	assert.NotEqual(t, "pass1234", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1234")))
}

func TestRegisterNeverAcceptsAdminRole(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	body := registerBody("sneaky", "sneaky@example.com", "")
	body["role"] = types.RoleAdmin

	c, w := testContext(t, models.User{}, "POST", "/users", body)
	CreateUser(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeBody(t, w)
	errs := response["errors"].(map[string]interface{})
	assert.Contains(t, errs, "role")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	createTestUser(t, "existing", types.RoleDonor, "O+")

	c, w := testContext(t, models.User{}, "POST", "/users",
		registerBody("existing", "fresh@example.com", ""))
	CreateUser(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeBody(t, w)
	errs := response["errors"].(map[string]interface{})
	assert.Contains(t, errs, "username")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	createTestUser(t, "existing", types.RoleDonor, "O+")

	c, w := testContext(t, models.User{}, "POST", "/users",
		registerBody("fresh", "existing@example.com", ""))
	CreateUser(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeBody(t, w)
	errs := response["errors"].(map[string]interface{})
	assert.Contains(t, errs, "email")
}

func TestRegisterDuplicatePhoneAfterNormalization(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	phone := "8801712345678"
	existing := createTestUser(t, "existing", types.RoleDonor, "O+")
	existing.Phone = &phone
	assert.NoError(t, db.DB.Save(&existing).Error)

	// different formatting, same digits after normalization
	c, w := testContext(t, models.User{}, "POST", "/users",
		registerBody("fresh", "fresh@example.com", "017-1234-5678"))
	CreateUser(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeBody(t, w)
	errs := response["errors"].(map[string]interface{})
	assert.Contains(t, errs, "phone")
}

func TestRegisterWithoutPhoneIsExemptFromUniqueness(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	c, w := testContext(t, models.User{}, "POST", "/users",
		registerBody("first", "first@example.com", ""))
	CreateUser(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = testContext(t, models.User{}, "POST", "/users",
		registerBody("second", "second@example.com", ""))
	CreateUser(c)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpdateUserCannotSelfEscalateToAdmin(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	user := createTestUser(t, "plain", types.RoleDonor, "O+")

	c, w := testContext(t, user, "PATCH", "/users/1", gin.H{"role": types.RoleAdmin})
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	UpdateUser(c)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored models.User
	assert.NoError(t, db.DB.First(&stored, user.ID).Error)
	assert.Equal(t, types.RoleDonor, stored.Role)
}

func TestUpdateUserSuperuserMayGrantAdmin(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	target := createTestUser(t, "target", types.RoleDonor, "O+")
	super := createTestUser(t, "root", types.RoleDonor, "")
	super.Superuser = true
	assert.NoError(t, db.DB.Save(&super).Error)

	c, w := testContext(t, super, "PATCH", "/users/1", gin.H{"role": types.RoleAdmin})
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	UpdateUser(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.User
	assert.NoError(t, db.DB.First(&stored, target.ID).Error)
	assert.Equal(t, types.RoleAdmin, stored.Role)
}

func TestUpdateUserNormalizesPhone(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	user := createTestUser(t, "plain", types.RoleDonor, "O+")

	c, w := testContext(t, user, "PATCH", "/users/1", gin.H{"phone": "017-9999-8888"})
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	UpdateUser(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.User
	assert.NoError(t, db.DB.First(&stored, user.ID).Error)
	assert.Equal(t, "8801799998888", stored.PhoneString())
}

func TestDeleteUserCascadesOwnedRecords(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	user := createTestUser(t, "leaving", types.RoleDonor, "O+")
	admin := createTestUser(t, "admin", types.RoleAdmin, "")

	assert.NoError(t, db.DB.Create(&models.DonationRequest{
		RequesterID: user.ID, BloodGroup: "O+", Units: 1, Status: types.StatusPending,
	}).Error)
	assert.NoError(t, db.DB.Create(&models.Donation{
		DonorID: user.ID, BloodGroup: "O+", Units: 1,
	}).Error)

	c, w := testContext(t, admin, "DELETE", "/users/1", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	DeleteUser(c)

	assert.Equal(t, http.StatusNoContent, w.Code)

	var requests, donations int64
	db.DB.Model(&models.DonationRequest{}).Where("requester_id = ?", user.ID).Count(&requests)
	db.DB.Model(&models.Donation{}).Where("donor_id = ?", user.ID).Count(&donations)
	assert.Equal(t, int64(0), requests)
	assert.Equal(t, int64(0), donations)
}

func TestSearchDonors(t *testing.T) {
	setupTestDB(t)
	installFakeMailer(t)

	match := createTestUser(t, "dhaka_donor", types.RoleDonor, "O+")
	match.City = "Dhaka"
	assert.NoError(t, db.DB.Save(&match).Error)

	offGroup := createTestUser(t, "other_group", types.RoleDonor, "B+")
	offGroup.City = "Dhaka"
	assert.NoError(t, db.DB.Save(&offGroup).Error)

	inactive := createTestUser(t, "inactive", types.RoleDonor, "O+")
	inactive.Active = false
	assert.NoError(t, db.DB.Save(&inactive).Error)

	createTestUser(t, "hospital", types.RoleHospital, "O+")

	c, w := testContext(t, models.User{}, "GET", "/donors/search?blood_group=O%2B&city=dha", nil)
	SearchDonors(c)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	items := response["items"].([]interface{})
	assert.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "dhaka_donor", first["username"])
	assert.Equal(t, float64(1), response["total_count"])
}
