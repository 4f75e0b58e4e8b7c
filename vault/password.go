package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Tag        = "pbkdf2"
	pbkdf2Iterations = 100000
	saltLength       = 16
	keyLength        = sha256.Size
)

// HashPassword derives a PBKDF2-HMAC-SHA256 hash with a fresh random salt
// and encodes it as a self-describing string:
//
//	$pbkdf2$<iterations>$<salt base64>$<digest base64>
//
// The iteration count travels inside the encoding, so it can be raised
// later without invalidating existing hashes.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "[HashPassword] rand.Read")
	}

	digest := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLength, sha256.New)
	encoded := "$" + pbkdf2Tag +
		"$" + strconv.Itoa(pbkdf2Iterations) +
		"$" + base64.StdEncoding.EncodeToString(salt) +
		"$" + base64.StdEncoding.EncodeToString(digest)
	return encoded, nil
}

// VerifyPassword recomputes the digest from the encoded parameters and
// compares in constant time. Any parse failure fails closed: the answer is
// false, never a panic or an error.
func VerifyPassword(password, encoded string) bool {
	if !strings.HasPrefix(encoded, "$"+pbkdf2Tag+"$") {
		return false
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		return false
	}

	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(expected) == 0 {
		return false
	}

	actual := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

// GenerateTemporaryPassword returns a random URL-safe password with n bytes
// of entropy.
func GenerateTemporaryPassword(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "[GenerateTemporaryPassword] rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
