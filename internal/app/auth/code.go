package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

var codeRange = big.NewInt(900000)

// GenerateCode returns a uniformly random 6-digit verification code in
// the range 100000-999999.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// CodeExpiry returns the expiry timestamp for a code issued now. A
// zero ttl falls back to 24 hours.
func CodeExpiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return time.Now().Add(ttl)
}
