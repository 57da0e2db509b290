package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// SignPayload returns the value for the webhook signature header.
// Example: "sha256=b94d27b9934d3e08..."
func SignPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature header against the body
func VerifySignature(body []byte, secret, header string) bool {
	if !strings.HasPrefix(header, signaturePrefix) {
		return false
	}
	return hmac.Equal([]byte(SignPayload(body, secret)), []byte(header))
}
