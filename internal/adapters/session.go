package adapters

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSession indicates the session token failed verification
var ErrInvalidSession = errors.New("invalid session token")

// JWTSessionVerifier verifies provider access tokens signed with the
// project's HS256 secret
type JWTSessionVerifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

// NewJWTSessionVerifier creates a verifier. The issuer is derived from the
// provider base URL.
func NewJWTSessionVerifier(secret, providerURL, audience string) (*JWTSessionVerifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTSessionVerifier{
		secret:   []byte(secret),
		issuer:   strings.TrimRight(providerURL, "/") + "/auth/v1",
		audience: audience,
		leeway:   5 * time.Second,
	}, nil
}

// Verify checks signature, issuer, audience and expiry and requires the
// subject to be a user id
func (v *JWTSessionVerifier) Verify(token string) (*models.SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidSession)
	}
	if claims.ID == "" {
		claims.ID = claims.SessionID
	}
	return claims, nil
}

// Sign issues a session token for subject. Used by tests and local tooling
// that stand in for the provider.
func (v *JWTSessionVerifier) Sign(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := models.SessionClaims{
		Role:      "authenticated",
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
