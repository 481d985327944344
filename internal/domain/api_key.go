package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	EnvTest = "test"
	EnvLive = "live"
)

const (
	apiKeyPrefix = "fm"
	apiKeyLength = 32
	base62Chars  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

var ErrInvalidKeyEnvironment = errors.New("invalid environment: must be 'test' or 'live'")

var validEnvironments = map[string]bool{
	EnvTest: true,
	EnvLive: true,
}

// GenerateAPIKey returns a random key for the API_KEY setting.
// Format: fm_<env>_<32 base62 chars>
func GenerateAPIKey(env string) (string, error) {
	if !validEnvironments[env] {
		return "", ErrInvalidKeyEnvironment
	}

	randomPart, err := generateSecureRandomString(apiKeyLength)
	if err != nil {
		return "", err
	}

	return apiKeyPrefix + "_" + env + "_" + randomPart, nil
}

// IsValidFormat reports whether key looks like a GenerateAPIKey result.
// Hand-picked keys still work; this only drives a startup warning.
func IsValidFormat(key string) bool {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 {
		return false
	}
	if parts[0] != apiKeyPrefix || !validEnvironments[parts[1]] {
		return false
	}
	if len(parts[2]) != apiKeyLength {
		return false
	}
	for _, char := range parts[2] {
		if !strings.ContainsRune(base62Chars, char) {
			return false
		}
	}
	return true
}

func generateSecureRandomString(length int) (string, error) {
	result := make([]byte, length)
	base62Len := big.NewInt(int64(len(base62Chars)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, base62Len)
		if err != nil {
			return "", err
		}
		result[i] = base62Chars[num.Int64()]
	}

	return string(result), nil
}
