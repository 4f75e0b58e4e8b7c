package vault

import (
	"crypto/rand"
	"encoding/base32"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpSecretLength = 20 // 160 bits, the RFC 4226 recommendation

// totpOpts pins the parameters every authenticator app assumes: 30 second
// steps, 6 digits, HMAC-SHA1, one step of allowed clock drift either way.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateTOTPSecret returns a new random secret, base32 without padding.
func GenerateTOTPSecret() (string, error) {
	bytes := make([]byte, totpSecretLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "[GenerateTOTPSecret] rand.Read")
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(bytes), nil
}

// GenerateTOTP returns the current 6-digit code for the secret.
func GenerateTOTP(secret string) (string, error) {
	return GenerateTOTPAt(secret, time.Now())
}

// GenerateTOTPAt returns the 6-digit code for the secret at a given instant.
func GenerateTOTPAt(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, at, totpOpts)
	if err != nil {
		return "", errors.Wrap(err, "[GenerateTOTPAt] totp.GenerateCodeCustom")
	}
	return code, nil
}

// VerifyTOTP checks a submitted code against the secret, accepting one time
// step of drift in either direction. Non-6-digit input and undecodable
// secrets fail closed.
func VerifyTOTP(secret, code string) bool {
	return VerifyTOTPAt(secret, code, time.Now())
}

// VerifyTOTPAt is VerifyTOTP with an explicit clock, for testing windows.
func VerifyTOTPAt(secret, code string, at time.Time) bool {
	if secret == "" || len(code) != 6 {
		return false
	}
	valid, err := totp.ValidateCustom(code, secret, at, totpOpts)
	if err != nil {
		return false
	}
	return valid
}

// TOTPEnrollmentURI builds the otpauth:// URI consumed by authenticator
// apps, for external QR rendering.
func TOTPEnrollmentURI(secret, label, issuer string) string {
	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", issuer)
	return "otpauth://totp/" + url.PathEscape(issuer) + ":" + url.PathEscape(label) + "?" + query.Encode()
}
