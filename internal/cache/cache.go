// Package cache stores rendered validation reports keyed by the content of
// the filing and the settings that produced them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// keyPrefix is bumped whenever the report format changes
const keyPrefix = "ixbrlcheck:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ReportKey generates a cache key from the filing bytes and every setting
// that changes its report (profile, parser, profile set fingerprint).
func ReportKey(raw []byte, settings ...string) string {
	h := sha256.New()
	h.Write(raw)
	for _, s := range settings {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
