// Package awssig implements AWS Signature Version 4 request signing,
// shared by the AWS Transcribe STT adapter and any other provider that
// sits behind an AWS-hosted endpoint. Percent-encoding follows AWS's
// extended rule set rather than net/url's, which under-encodes several
// characters SigV4 requires escaped.
package awssig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Signer holds the long-lived credentials and service scope used to sign
// requests. A Signer has no mutable state and is safe for concurrent use.
type Signer struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Service         string
}

// New builds a Signer for the given region and service (e.g. "transcribe",
// "s3").
func New(accessKeyID, secretAccessKey, region, service string) *Signer {
	return &Signer{AccessKeyID: accessKeyID, SecretAccessKey: secretAccessKey, Region: region, Service: service}
}

// WithSessionToken returns a copy of the Signer carrying a temporary
// session token, added as x-amz-security-token on every signed request.
func (s *Signer) WithSessionToken(token string) *Signer {
	cp := *s
	cp.SessionToken = token
	return &cp
}

// SignRequest adds x-amz-date, x-amz-content-sha256, Host, and
// Authorization headers to req so it can be sent as-is. payload is the
// exact byte sequence that will be transmitted as the body; callers must
// sign with the same bytes they send.
func (s *Signer) SignRequest(req *http.Request, payload []byte) error {
	return s.signAt(req, payload, time.Now().UTC())
}

func (s *Signer) signAt(req *http.Request, payload []byte, now time.Time) error {
	dateStamp := now.Format("20060102")
	amzDate := now.Format("20060102T150405Z")

	req.Header.Set("x-amz-date", amzDate)
	contentHash := hashPayload(payload)
	req.Header.Set("x-amz-content-sha256", contentHash)
	if s.SessionToken != "" {
		req.Header.Set("x-amz-security-token", s.SessionToken)
	}

	if req.Header.Get("Host") == "" {
		req.Header.Set("Host", hostHeaderValue(req))
	}

	canonicalRequest := s.buildCanonicalRequest(req, contentHash)
	stringToSign := s.buildStringToSign(canonicalRequest, amzDate, dateStamp)
	signature, err := s.calculateSignature(stringToSign, dateStamp)
	if err != nil {
		return err
	}

	signedHeaders := s.signedHeaders(req.Header)
	credentialScope := s.credentialScope(dateStamp)
	authHeader := fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		s.AccessKeyID, credentialScope, signedHeaders, signature,
	)
	req.Header.Set("Authorization", authHeader)

	return nil
}

func hostHeaderValue(req *http.Request) string {
	host := req.URL.Hostname()
	port := req.URL.Port()
	if port == "" {
		return host
	}
	if (req.URL.Scheme == "https" && port == "443") || (req.URL.Scheme == "http" && port == "80") {
		return host
	}
	return host + ":" + port
}

func (s *Signer) buildCanonicalRequest(req *http.Request, contentHash string) string {
	canonicalURI := canonicalizeURI(req.URL.Path)
	canonicalQuery := canonicalizeQuery(req.URL.RawQuery)
	canonicalHeaders := s.canonicalHeaders(req.Header)
	signedHeaders := s.signedHeaders(req.Header)

	return strings.Join([]string{
		strings.ToUpper(req.Method),
		canonicalURI,
		canonicalQuery,
		canonicalHeaders,
		signedHeaders,
		contentHash,
	}, "\n")
}

func (s *Signer) canonicalHeaders(h http.Header) string {
	type kv struct{ k, v string }
	entries := make([]kv, 0, len(h))
	for name, values := range h {
		joined := strings.TrimSpace(strings.Join(values, ","))
		entries = append(entries, kv{strings.ToLower(name), joined})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].k < entries[j].k })

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.k)
		b.WriteByte(':')
		b.WriteString(e.v)
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *Signer) signedHeaders(h http.Header) string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)
	return strings.Join(names, ";")
}

func (s *Signer) credentialScope(dateStamp string) string {
	return fmt.Sprintf("%s/%s/%s/aws4_request", dateStamp, s.Region, s.Service)
}

func (s *Signer) buildStringToSign(canonicalRequest, amzDate, dateStamp string) string {
	hashedCanonicalRequest := hashPayload([]byte(canonicalRequest))
	return strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		s.credentialScope(dateStamp),
		hashedCanonicalRequest,
	}, "\n")
}

func (s *Signer) calculateSignature(stringToSign, dateStamp string) (string, error) {
	kSecret := []byte("AWS4" + s.SecretAccessKey)
	kDate := hmacSHA256(kSecret, dateStamp)
	kRegion := hmacSHA256(kDate, s.Region)
	kService := hmacSHA256(kRegion, s.Service)
	kSigning := hmacSHA256(kService, "aws4_request")
	signature := hmacSHA256(kSigning, stringToSign)
	return hex.EncodeToString(signature), nil
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// needsURIEncoding reports whether AWS requires c percent-encoded in a
// canonical URI path segment: every byte outside RFC 3986's unreserved set.
func needsURIEncoding(c byte) bool {
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
		return false
	}
	switch c {
	case '-', '_', '.', '~':
		return false
	}
	return true
}

// needsQueryEncoding lists '=', '&', and '+' explicitly; all three are
// already outside the unreserved set, so it encodes exactly the bytes
// needsURIEncoding does.
func needsQueryEncoding(c byte) bool {
	switch c {
	case '=', '&', '+':
		return true
	}
	return needsURIEncoding(c)
}

func percentEncode(s string, needsEncoding func(byte) bool) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if needsEncoding(c) {
			fmt.Fprintf(&b, "%%%02X", c)
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// canonicalizeURI percent-encodes each path segment independently,
// leaving the separating slashes unescaped.
func canonicalizeURI(path string) string {
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = percentEncode(seg, needsURIEncoding)
	}
	return strings.Join(segments, "/")
}

// canonicalizeQuery splits the raw query string on '&' and '=', percent-
// encodes each key/value independently, sorts by key, and rejoins.
func canonicalizeQuery(query string) string {
	if query == "" {
		return ""
	}

	type kv struct{ k, v string }
	var pairs []kv
	for _, param := range strings.Split(query, "&") {
		if param == "" {
			continue
		}
		if idx := strings.IndexByte(param, '='); idx >= 0 {
			pairs = append(pairs, kv{
				k: percentEncode(param[:idx], needsQueryEncoding),
				v: percentEncode(param[idx+1:], needsQueryEncoding),
			})
		} else {
			pairs = append(pairs, kv{k: percentEncode(param, needsQueryEncoding)})
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		if p.v == "" {
			parts[i] = p.k
		} else {
			parts[i] = p.k + "=" + p.v
		}
	}
	return strings.Join(parts, "&")
}
