package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/assetgrid/assetgrid/pkg/clientip"
)

// maxKeyLength bounds the rate limit key length to keep storage keys sane in
// backends like Redis.
const maxKeyLength = 64

// KeyFunc extracts the admission identifier from an HTTP request. Keys are
// credential-scoped, not tenant-scoped: two users of the same tenant get
// independent budgets.
type KeyFunc func(*http.Request) string

// ByHeader keys admission on a credential header such as an API key.
func ByHeader(name string) KeyFunc {
	return func(r *http.Request) string {
		return r.Header.Get(name)
	}
}

// ByClientIP keys admission on the resolved client address, honoring the
// usual proxy headers.
func ByClientIP() KeyFunc {
	return clientip.GetIP
}

// FirstOf tries key functions in order and returns the first non-empty key.
// The usual chain is credential first, client IP as the anonymous fallback.
func FirstOf(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				return clampKey(key)
			}
		}
		return ""
	}
}

// clampKey hashes keys longer than maxKeyLength down to 32 hex chars.
func clampKey(key string) string {
	if len(key) <= maxKeyLength {
		return key
	}
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}
