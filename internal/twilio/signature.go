// internal/twilio/signature.go
package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
)

// Sign computes the inbound-webhook signature for a request: base64 of
// HMAC-SHA1 over the full request URL concatenated with the raw body, tagged
// with the sha1= scheme prefix. Exported for tests and tooling.
func Sign(authToken, url string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(url))
	mac.Write(body)
	return "sha1=" + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks a claimed X-Twilio-Signature value against the expected
// signature for url+body. The comparison is constant-time.
func Verify(authToken, url string, body []byte, signature string) bool {
	expected := Sign(authToken, url, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
