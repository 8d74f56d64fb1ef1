package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/storefront/services/shared/utils"
)

const (
	ChannelEmail = "email"
	ChannelPhone = "phone"

	otpLength         = 6
	otpKeyPrefix      = "otp:"
	otpAttemptsSuffix = ":attempts"
	maxOTPAttempts    = 5
)

// verifyOTPScript compares KEYS[1] with ARGV[1]. A match deletes the code and
// its attempt counter and returns 1. A miss bumps the counter in KEYS[2],
// which expires with the code, and deletes both once ARGV[2] misses are
// reached.
var verifyOTPScript = goredis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
	return 0
end
if stored == ARGV[1] then
	redis.call("DEL", KEYS[1], KEYS[2])
	return 1
end
local misses = redis.call("INCR", KEYS[2])
if misses == 1 then
	local ttl = redis.call("PTTL", KEYS[1])
	if ttl > 0 then
		redis.call("PEXPIRE", KEYS[2], ttl)
	end
end
if misses >= tonumber(ARGV[2]) then
	redis.call("DEL", KEYS[1], KEYS[2])
end
return 0
`)

// OTPVerifier checks a one-time code sent to a destination on a channel.
type OTPVerifier interface {
	VerifyOTP(ctx context.Context, channel, destination, code string) (bool, error)
}

// RedisOTPStore keeps issued codes in Redis until they expire or are used.
type RedisOTPStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRedisOTPStore(client *goredis.Client, ttl time.Duration) *RedisOTPStore {
	return &RedisOTPStore{client: client, ttl: ttl}
}

func otpKey(channel, destination string) string {
	return otpKeyPrefix + channel + ":" + strings.ToLower(strings.TrimSpace(destination))
}

// Issue generates a fresh code for the destination, replacing any earlier
// one, and returns it with its expiry.
func (s *RedisOTPStore) Issue(ctx context.Context, channel, destination string) (string, time.Time, error) {
	code, err := utils.GenerateOTP(otpLength)
	if err != nil {
		return "", time.Time{}, err
	}
	key := otpKey(channel, destination)
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, key, code, s.ttl)
		pipe.Del(ctx, key+otpAttemptsSuffix)
		return nil
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store otp: %w", err)
	}
	return code, time.Now().Add(s.ttl), nil
}

// VerifyOTP checks and consumes the code in one step. Every wrong guess is
// counted; after maxOTPAttempts the code is burned and a new one must be
// issued.
func (s *RedisOTPStore) VerifyOTP(ctx context.Context, channel, destination, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	key := otpKey(channel, destination)
	n, err := verifyOTPScript.Run(ctx, s.client, []string{key, key + otpAttemptsSuffix}, code, maxOTPAttempts).Int()
	if err != nil {
		return false, fmt.Errorf("failed to verify otp: %w", err)
	}
	return n == 1, nil
}
