package cashfree

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature_Valid(t *testing.T) {
	body := []byte(`{"type":"PAYMENT_SUCCESS_WEBHOOK"}`)
	sig := sign("topsecret", "1700000000", body)
	require.True(t, VerifyWebhookSignature("topsecret", body, sig, "1700000000"))
}

func TestVerifyWebhookSignature_RejectsTamperedBody(t *testing.T) {
	body := []byte(`{"type":"PAYMENT_SUCCESS_WEBHOOK"}`)
	sig := sign("topsecret", "1700000000", body)
	require.False(t, VerifyWebhookSignature("topsecret", []byte(`{"type":"tampered"}`), sig, "1700000000"))
}

func TestVerifyWebhookSignature_RejectsWrongTimestamp(t *testing.T) {
	body := []byte(`{}`)
	sig := sign("topsecret", "1700000000", body)
	require.False(t, VerifyWebhookSignature("topsecret", body, sig, "1700000001"))
}

func TestVerifyWebhookSignature_RejectsWrongSecret(t *testing.T) {
	body := []byte(`{}`)
	sig := sign("othersecret", "1700000000", body)
	require.False(t, VerifyWebhookSignature("topsecret", body, sig, "1700000000"))
}

func TestVerifyWebhookSignature_RejectsMissingParts(t *testing.T) {
	require.False(t, VerifyWebhookSignature("topsecret", []byte(`{}`), "", "1700000000"))
	require.False(t, VerifyWebhookSignature("topsecret", []byte(`{}`), "c2ln", ""))
}
