package vault_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/friendgate/friendgate/vault"
)

func TestHashPassword_Encoding(t *testing.T) {
	encoded, err := vault.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 5)
	require.Empty(t, parts[0])
	require.Equal(t, "pbkdf2", parts[1])
	require.Equal(t, "100000", parts[2])
	require.NotEmpty(t, parts[3])
	require.NotEmpty(t, parts[4])
}

func TestHashPassword_SaltIsRandom(t *testing.T) {
	first, err := vault.HashPassword("same password")
	require.NoError(t, err)
	second, err := vault.HashPassword("same password")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.True(t, vault.VerifyPassword("same password", first))
	require.True(t, vault.VerifyPassword("same password", second))
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	for _, password := range []string{"short", "with spaces and symbols !@#", "ünïcødé", ""} {
		t.Run(password, func(t *testing.T) {
			encoded, err := vault.HashPassword(password)
			require.NoError(t, err)
			require.True(t, vault.VerifyPassword(password, encoded))
			require.False(t, vault.VerifyPassword(password+"x", encoded))
		})
	}
}

func TestVerifyPassword_CorruptedHashFailsClosed(t *testing.T) {
	encoded, err := vault.HashPassword("hunter22")
	require.NoError(t, err)

	// Mutating any single character must yield false, never a panic.
	for i := 0; i < len(encoded); i++ {
		mutated := []byte(encoded)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		require.False(t, vault.VerifyPassword("hunter22", string(mutated)), "mutation at index %d", i)
	}
}

func TestVerifyPassword_MalformedInputs(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"wrong tag":        "$bcrypt$100000$c2FsdA==$aGFzaA==",
		"no prefix":        "pbkdf2$100000$c2FsdA==$aGFzaA==",
		"too few fields":   "$pbkdf2$100000$c2FsdA==",
		"too many fields":  "$pbkdf2$100000$c2FsdA==$aGFzaA==$extra",
		"bad iterations":   "$pbkdf2$abc$c2FsdA==$aGFzaA==",
		"zero iterations":  "$pbkdf2$0$c2FsdA==$aGFzaA==",
		"bad salt base64":  "$pbkdf2$100000$!!!$aGFzaA==",
		"bad hash base64":  "$pbkdf2$100000$c2FsdA==$!!!",
		"empty digest":     "$pbkdf2$100000$c2FsdA==$",
		"plain garbage":    "garbage",
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			require.False(t, vault.VerifyPassword("anything", encoded))
		})
	}
}

func TestGenerateTemporaryPassword(t *testing.T) {
	first, err := vault.GenerateTemporaryPassword(16)
	require.NoError(t, err)
	second, err := vault.GenerateTemporaryPassword(16)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.GreaterOrEqual(t, len(first), 16)
}
