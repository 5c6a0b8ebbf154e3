package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// SignaturePrefix identifies the signature scheme in the header value.
const SignaturePrefix = "sha256="

// Standard delivery headers.
const (
	HeaderSignature  = "X-Webhook-Signature"
	HeaderEvent      = "X-Webhook-Event"
	HeaderWebhookID  = "X-Webhook-ID"
	HeaderDeliveryID = "X-Webhook-Delivery-ID"
)

// Sign computes the delivery signature over the exact body bytes:
// "sha256=" + base64(HMAC-SHA256(secret, body)).
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return SignaturePrefix + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks a received signature against the raw body using the shared
// secret. Comparison is constant-time. Receivers must verify over the exact
// bytes they read from the wire, not a re-serialized form.
func Verify(secret string, body []byte, signature string) bool {
	encoded, ok := strings.CutPrefix(signature, SignaturePrefix)
	if !ok {
		return false
	}

	got, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
