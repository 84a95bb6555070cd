package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// OwnerKey maps a caller id such as guest:abc to a path segment that keeps
// the raw id out of object keys.
func OwnerKey(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
