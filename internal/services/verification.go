package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/redis/go-redis/v9"
)

// Verification codes live for three minutes, matching the short window
// a user has to type the 6-digit code from their inbox.
const codeTTL = 3 * time.Minute

// CodeStore holds short-lived verification codes keyed by user id.
// Get returns the empty string when no code is stored.
type CodeStore interface {
	Put(ctx context.Context, userID uint, code string, ttl time.Duration) error
	Get(ctx context.Context, userID uint) (string, error)
	Delete(ctx context.Context, userID uint) error
}

// RedisCodeStore keeps codes under email_code:<id>, expiring them via
// the key TTL.
type RedisCodeStore struct{}

func codeKey(userID uint) string {
	return fmt.Sprintf("email_code:%d", userID)
}

func (RedisCodeStore) Put(ctx context.Context, userID uint, code string, ttl time.Duration) error {
	return db.Redis.Set(ctx, codeKey(userID), code, ttl).Err()
}

func (RedisCodeStore) Get(ctx context.Context, userID uint) (string, error) {
	stored, err := db.Redis.Get(ctx, codeKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return stored, err
}

func (RedisCodeStore) Delete(ctx context.Context, userID uint) error {
	return db.Redis.Del(ctx, codeKey(userID)).Err()
}

var codes CodeStore = RedisCodeStore{}

// SetCodeStore swaps the backend; used by tests.
func SetCodeStore(s CodeStore) {
	codes = s
}

// SendVerificationCode generates a 6-digit code, stores it under the
// user's key and mails it. Unlike the lifecycle notifications this
// returns the delivery error: the caller asked for the code and should
// know if it never left.
func SendVerificationCode(ctx context.Context, user models.User) error {
	code := fmt.Sprintf("%06d", rand.Intn(1000000))

	if err := codes.Put(ctx, user.ID, code, codeTTL); err != nil {
		return err
	}

	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nUse the following 6-digit code to confirm your email address:\n\n%s\n\n"+
			"This code will expire in 3 minutes. If you didn't request this, ignore this email.\n",
		name, code)

	return mailer.Send([]string{user.Email}, "Your verification code", body)
}

// CheckVerificationCode compares the submitted code against the stored
// one and consumes it on success. An expired or never-issued code reads
// the same as a wrong one.
func CheckVerificationCode(ctx context.Context, userID uint, code string) (bool, error) {
	stored, err := codes.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	if stored == "" || stored != code {
		return false, nil
	}

	_ = codes.Delete(ctx, userID)
	return true, nil
}
