package auth

import (
	"crypto/rand"
	"fmt"
)

// ResetKeyLength is the fixed length of a password-reset key.
const ResetKeyLength = 30

const resetKeyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewResetKey generates a random 30-character alphanumeric reset key.
// Only the bcrypt hash of the key is ever persisted; the plaintext exists
// just long enough to be mailed to the account holder.
func NewResetKey() (string, error) {
	buf := make([]byte, ResetKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating reset key: %w", err)
	}
	for i, b := range buf {
		buf[i] = resetKeyAlphabet[int(b)%len(resetKeyAlphabet)]
	}
	return string(buf), nil
}
