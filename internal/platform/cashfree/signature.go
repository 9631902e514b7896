package cashfree

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifyWebhookSignature checks the provider's webhook signature:
// base64(HMAC-SHA256(secret, timestamp + rawBody)). Constant-time compare.
// Must be called on the raw body bytes before they are parsed.
func VerifyWebhookSignature(secret string, rawBody []byte, signature, timestamp string) bool {
	if signature == "" || timestamp == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
