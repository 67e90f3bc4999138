package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ridebooking/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrAuthMissing = errors.New("authorization header missing")
	ErrAuthScheme  = errors.New("authentication scheme must be bearer")
	ErrAuthInvalid = errors.New("invalid or expired authentication token")
)

const (
	msgAuthMissing   = "Authorization header missing."
	msgAuthScheme    = "Authentication scheme must be Bearer."
	msgAuthInvalid   = "Invalid or expired authentication token."
	msgTokenMismatch = "Token mismatch: User ID does not match request data."
)

func authMessage(err error) string {
	switch {
	case errors.Is(err, ErrAuthMissing):
		return msgAuthMissing
	case errors.Is(err, ErrAuthScheme):
		return msgAuthScheme
	default:
		return msgAuthInvalid
	}
}

// BearerAuth validates HS256 bearer tokens and yields the caller uid from the sub claim.
type BearerAuth struct {
	secret []byte
	issuer string
}

// NewBearerAuth returns nil when auth is disabled; a nil *BearerAuth lets every request through.
func NewBearerAuth(cfg config.AuthConfig) *BearerAuth {
	if !cfg.Enabled {
		return nil
	}
	return &BearerAuth{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

func (a *BearerAuth) Enabled() bool { return a != nil }

// Authenticate parses an Authorization header value.
func (a *BearerAuth) Authenticate(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrAuthMissing
	}

	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrAuthScheme
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrAuthInvalid
	}
	return claims.Subject, nil
}

// authenticateRequest returns ok=false after writing the 401 response.
func (a *BearerAuth) authenticateRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	if a == nil {
		return "", true
	}
	uid, err := a.Authenticate(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, authMessage(err))
		return "", false
	}
	return uid, true
}

type uidContextKey struct{}

func withUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidContextKey{}, uid)
}

// UIDFromContext returns the authenticated caller, if any.
func UIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(uidContextKey{}).(string)
	return uid, ok && uid != ""
}
