package auth

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
)

const testJWT = "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.c2ln"

var testOpts = CredentialOptions{IdentityHeader: "X-User-Id", SessionCookie: "sb-access-token"}

func TestAccessTokenBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+testJWT)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: "a.b.c"})

	if got := AccessToken(req, "sb-access-token"); got != testJWT {
		t.Errorf("got %q, want bearer token", got)
	}
}

func TestAccessTokenCookieFormats(t *testing.T) {
	session := `{"access_token":"` + testJWT + `","refresh_token":"r"}`

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"raw jwt", testJWT, testJWT},
		{"base64 session", "base64-" + base64.RawURLEncoding.EncodeToString([]byte(session)), testJWT},
		{"url encoded session", url.QueryEscape(session), testJWT},
		{"opaque value", "not-a-token", ""},
		{"broken base64", "base64-!!!", ""},
		{"broken json", "{nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: tt.value})
			if got := AccessToken(req, "sb-access-token"); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccessTokenChunkedCookie(t *testing.T) {
	encoded := "base64-" + base64.RawURLEncoding.EncodeToString([]byte(`{"access_token":"`+testJWT+`"}`))
	half := len(encoded) / 2

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access-token.0", Value: encoded[:half]})
	req.AddCookie(&http.Cookie{Name: "sb-access-token.1", Value: encoded[half:]})

	if got := AccessToken(req, "sb-access-token"); got != testJWT {
		t.Errorf("got %q, want %q", got, testJWT)
	}
}

func TestAccessTokenMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if got := AccessToken(req, "sb-access-token"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if got := AccessToken(req, ""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestCredentialsFromRequest(t *testing.T) {
	userID := uuid.New()
	tenantID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", "  "+userID.String()+" ")
	req.Header.Set("Authorization", "Bearer "+testJWT)
	req = req.WithContext(ContextWithTenantID(req.Context(), tenantID))

	creds := CredentialsFromRequest(req, testOpts)
	if creds.TrustedUserID != userID.String() {
		t.Errorf("trusted id: got %q", creds.TrustedUserID)
	}
	if creds.AccessToken != testJWT {
		t.Errorf("token: got %q", creds.AccessToken)
	}
	if creds.TenantID == nil || *creds.TenantID != tenantID {
		t.Errorf("tenant: got %v", creds.TenantID)
	}

	bare := CredentialsFromRequest(httptest.NewRequest(http.MethodGet, "/", nil), testOpts)
	if bare.TrustedUserID != "" || bare.AccessToken != "" || bare.TenantID != nil {
		t.Errorf("expected empty credentials, got %+v", bare)
	}
}
