package report

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Sign computes the HMAC-SHA256 attestation of r. The attestation and
// vault_ref fields are cleared before hashing: the ref is only known after
// the signed report has been uploaded.
func Sign(r Report, secret string) string {
	r.Attestation = ""
	r.VaultRef = ""
	data, _ := json.Marshal(r)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether r carries a valid attestation for secret.
func Verify(r Report, secret string) bool {
	if r.Attestation == "" {
		return false
	}
	return hmac.Equal([]byte(r.Attestation), []byte(Sign(r, secret)))
}
