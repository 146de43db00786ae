package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Credentials is everything the resolver reads from a request. It is built
// once at the edge of the handler so the resolver never reaches into
// ambient request state.
type Credentials struct {
	// TrustedUserID is the caller id set by the edge layer after it verified
	// the session. Empty when the edge did not vouch for the request.
	TrustedUserID string
	// AccessToken is the provider session token used on the fallback path.
	AccessToken string
	// TenantID narrows admission to roles effective in this tenant.
	TenantID *uuid.UUID
}

// CredentialOptions names where credentials live on a request
type CredentialOptions struct {
	IdentityHeader string
	SessionCookie  string
}

// CredentialsFromRequest extracts resolver input from r
func CredentialsFromRequest(r *http.Request, opts CredentialOptions) Credentials {
	creds := Credentials{
		AccessToken: AccessToken(r, opts.SessionCookie),
	}
	if opts.IdentityHeader != "" {
		creds.TrustedUserID = strings.TrimSpace(r.Header.Get(opts.IdentityHeader))
	}
	if tenantID, ok := TenantIDFromContext(r.Context()); ok {
		creds.TenantID = &tenantID
	}
	return creds
}

// AccessToken returns the bearer token of r, falling back to the session
// cookie. Both a raw token and the provider's serialized session format
// (optionally "base64-" prefixed and split across numbered chunks) are
// accepted.
func AccessToken(r *http.Request, cookieName string) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "bearer "
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
	}
	if cookieName == "" {
		return ""
	}
	return tokenFromCookieValue(readCookie(r, cookieName))
}

// maxCookieChunks bounds how many "<name>.<n>" chunks are reassembled
const maxCookieChunks = 10

func readCookie(r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil {
		return c.Value
	}
	var b strings.Builder
	for i := 0; i < maxCookieChunks; i++ {
		c, err := r.Cookie(name + "." + strconv.Itoa(i))
		if err != nil {
			break
		}
		b.WriteString(c.Value)
	}
	return b.String()
}

type serializedSession struct {
	AccessToken string `json:"access_token"`
}

func tokenFromCookieValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "base64-") {
		decoded, ok := decodeBase64(strings.TrimPrefix(value, "base64-"))
		if !ok {
			return ""
		}
		value = decoded
	} else if strings.HasPrefix(value, "%7B") || strings.HasPrefix(value, "%7b") {
		unescaped, err := url.QueryUnescape(value)
		if err != nil {
			return ""
		}
		value = unescaped
	}

	if strings.HasPrefix(value, "{") {
		var session serializedSession
		if err := json.Unmarshal([]byte(value), &session); err != nil {
			return ""
		}
		return strings.TrimSpace(session.AccessToken)
	}
	if strings.Count(value, ".") == 2 {
		return value
	}
	return ""
}

func decodeBase64(s string) (string, bool) {
	for _, enc := range []*base64.Encoding{base64.RawURLEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.StdEncoding} {
		if b, err := enc.DecodeString(s); err == nil {
			return string(b), true
		}
	}
	return "", false
}
