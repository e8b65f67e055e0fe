// Package signature authenticates inbound request bodies with HMAC-SHA256.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const headerPrefix = "sha256="

// Sign computes the signature header value for a raw request body.
// The signature covers the exact bytes on the wire, not a re-serialization.
func Sign(rawBody, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(rawBody)
	return headerPrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature header of the exact form "sha256=<hex>" against
// the HMAC-SHA256 digest of rawBody under secret. Any other header shape, and
// any malformed hex, fails closed: the function returns false and never
// panics or computes a digest it has no use for.
//
// The digest comparison is constant time in both length and content
// (hmac.Equal short-circuits only on length, which is not secret here).
// Verify is a pure function of its inputs.
func Verify(rawBody []byte, signatureHeader string, secret []byte) bool {
	if !strings.HasPrefix(signatureHeader, headerPrefix) {
		return false
	}
	provided, err := hex.DecodeString(signatureHeader[len(headerPrefix):])
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	return hmac.Equal(provided, expected)
}
