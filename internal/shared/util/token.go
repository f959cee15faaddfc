package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// RandomHex returns 2*n lowercase hex characters from crypto/rand.
// It falls back to the clock if the random source fails.
func RandomHex(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		s := fmt.Sprintf("%0*x", 2*n, time.Now().UnixNano())
		return s[len(s)-2*n:]
	}
	return hex.EncodeToString(b)
}
