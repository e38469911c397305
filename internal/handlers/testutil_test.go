package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/middleware"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/services"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}

	db.DB = testDB
	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
}

// fakeMailer records outgoing messages; Fail makes every send error so
// tests can prove delivery failures are swallowed.
type fakeMailer struct {
	mu   sync.Mutex
	Fail bool
	Sent []fakeMail
}

type fakeMail struct {
	To      []string
	Subject string
	Body    string
}

func (m *fakeMailer) Send(to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errSMTPDown
	}
	m.Sent = append(m.Sent, fakeMail{To: to, Subject: subject, Body: body})
	return nil
}

var errSMTPDown = errors.New("smtp unreachable")

func installFakeMailer(t *testing.T) *fakeMailer {
	t.Helper()
	m := &fakeMailer{}
	services.SetMailer(m)
	t.Cleanup(func() { services.SetMailer(services.ConsoleMailer{}) })
	return m
}

// fakeCodeStore keeps verification codes in a map, standing in for
// redis.
type fakeCodeStore struct {
	mu    sync.Mutex
	codes map[uint]string
}

func (s *fakeCodeStore) Put(ctx context.Context, userID uint, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[userID] = code
	return nil
}

func (s *fakeCodeStore) Get(ctx context.Context, userID uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[userID], nil
}

func (s *fakeCodeStore) Delete(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, userID)
	return nil
}

func (s *fakeCodeStore) code(userID uint) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[userID]
}

func installFakeCodeStore(t *testing.T) *fakeCodeStore {
	t.Helper()
	s := &fakeCodeStore{codes: make(map[uint]string)}
	services.SetCodeStore(s)
	t.Cleanup(func() { services.SetCodeStore(services.RedisCodeStore{}) })
	return s
}

func createTestUser(t *testing.T, username, role, bloodGroup string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		BloodGroup:   bloodGroup,
		Active:       true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// testContext builds a gin context carrying an authenticated user, the
// way AuthMiddleware would leave it.
func testContext(t *testing.T, user models.User, method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	c.Request = httptest.NewRequest(method, target, &buf)
	c.Request.Header.Set("Content-Type", "application/json")

	if user.ID != 0 {
		c.Set(types.ContextUserKey, middleware.AuthenticatedUser{
			ID:         user.ID,
			Username:   user.Username,
			Email:      user.Email,
			Role:       user.Role,
			BloodGroup: user.BloodGroup,
		})
	}

	return c, w
}

func jsonUnmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return response
}
