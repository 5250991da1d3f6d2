package kling

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func base64urlDecode(encoded string) ([]byte, error) {
	if padding := len(encoded) % 4; padding > 0 {
		encoded += strings.Repeat("=", 4-padding)
	}
	encoded = strings.ReplaceAll(encoded, "-", "+")
	encoded = strings.ReplaceAll(encoded, "_", "/")
	return base64.StdEncoding.DecodeString(encoded)
}

func decodedClaims(t *testing.T, token string) map[string]interface{} {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payloadJSON, err := base64urlDecode(parts[1])
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(payloadJSON, &payload))
	return payload
}

func TestGenerateAuthToken_Structure(t *testing.T) {
	t.Parallel()

	token, err := generateAuthToken("test-access-key", "test-secret-key")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)
}

func TestGenerateAuthToken_Header(t *testing.T) {
	t.Parallel()

	token, err := generateAuthToken("ak", "sk")
	require.NoError(t, err)

	headerJSON, err := base64urlDecode(strings.Split(token, ".")[0])
	require.NoError(t, err)
	var header map[string]string
	require.NoError(t, json.Unmarshal(headerJSON, &header))
	assert.Equal(t, "HS256", header["alg"])
	assert.Equal(t, "JWT", header["typ"])
}

func TestGenerateAuthToken_Claims(t *testing.T) {
	t.Parallel()

	token, err := generateAuthToken("my-access-key", "my-secret")
	require.NoError(t, err)

	claims := decodedClaims(t, token)
	assert.Equal(t, "my-access-key", claims["iss"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	nbf, ok := claims["nbf"].(float64)
	require.True(t, ok)

	assert.InDelta(t, 1800, int64(exp)-int64(nbf), 10)
	assert.Greater(t, int64(exp), time.Now().Unix())
}

func TestGenerateAuthToken_DifferentSecretsDifferentSignatures(t *testing.T) {
	t.Parallel()

	token1, err := generateAuthToken("ak", "secret-1")
	require.NoError(t, err)
	token2, err := generateAuthToken("ak", "secret-2")
	require.NoError(t, err)

	assert.NotEqual(t, strings.Split(token1, ".")[2], strings.Split(token2, ".")[2])
}

func TestGenerateAuthToken_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := generateAuthToken("", "sk")
	require.Error(t, err)

	_, err = generateAuthToken("ak", "")
	require.Error(t, err)
}

func TestBase64urlEncode_NoPaddingOrUnsafeChars(t *testing.T) {
	t.Parallel()

	encoded := base64urlEncode([]byte("hello world"))
	assert.NotContains(t, encoded, "+")
	assert.NotContains(t, encoded, "/")
	assert.NotContains(t, encoded, "=")
}

func TestBase64urlEncode_Roundtrip(t *testing.T) {
	t.Parallel()

	original := []byte("test data 123")
	decoded, err := base64urlDecode(base64urlEncode(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}
