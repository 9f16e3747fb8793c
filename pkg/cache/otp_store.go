package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "password_reset:"

// OTPStore keeps password-reset passcodes in Redis under a TTL so expiry
// needs no sweeper.
type OTPStore struct {
	client *redis.Client
}

// NewOTPStore wraps a Redis client as an OTP store.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

// Put stores the passcode for an email, replacing any previous one.
func (s *OTPStore) Put(ctx context.Context, email string, otp int, ttl time.Duration) error {
	if err := s.client.Set(ctx, otpKeyPrefix+email, otp, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Get returns the stored passcode, or found=false when none is live.
func (s *OTPStore) Get(ctx context.Context, email string) (int, bool, error) {
	otp, err := s.client.Get(ctx, otpKeyPrefix+email).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load otp: %w", err)
	}
	return otp, true, nil
}

// Delete removes the passcode after a successful reset.
func (s *OTPStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, otpKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
