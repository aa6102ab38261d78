package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// tokenBytes is the raw entropy behind an approval-link token.
const tokenBytes = 32

var codeRange = big.NewInt(900000)

// NewToken returns a URL-safe opaque token without padding.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewVerificationCode returns a 6-digit code uniform over [100000, 999999].
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
