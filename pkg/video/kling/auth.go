package kling

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// jwtClaims mirrors Kling's expected JWT body: iss carries the access
// key, exp/nbf bound a 30 minute validity window with a small clock-skew
// allowance on the not-before side.
type jwtClaims struct {
	Iss string `json:"iss"`
	Exp int64  `json:"exp"`
	Nbf int64  `json:"nbf"`
}

// generateAuthToken builds an HS256 JWT signed with secretKey, the bearer
// token Kling's HTTP API expects on every request.
func generateAuthToken(accessKey, secretKey string) (string, error) {
	if accessKey == "" {
		return "", fmt.Errorf("kling: access key is required")
	}
	if secretKey == "" {
		return "", fmt.Errorf("kling: secret key is required")
	}

	now := time.Now().Unix()
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	claims := jwtClaims{Iss: accessKey, Exp: now + 1800, Nbf: now - 5}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("kling: marshal jwt header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("kling: marshal jwt claims: %w", err)
	}

	signingInput := base64urlEncode(headerJSON) + "." + base64urlEncode(claimsJSON)

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(signingInput))
	signature := mac.Sum(nil)

	return signingInput + "." + base64urlEncode(signature), nil
}

func base64urlEncode(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	encoded = strings.ReplaceAll(encoded, "+", "-")
	encoded = strings.ReplaceAll(encoded, "/", "_")
	return strings.TrimRight(encoded, "=")
}
