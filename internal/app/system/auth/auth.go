// Package auth resolves the caller identity from a verified bearer token.
//
// Tokens are HS256 JWTs issued by the identity provider's token bridge:
// sub is the uid, and name and email are optional profile claims.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Darakbang-Tools-Hackathon/Hackathon-Team3-BE/internal/app/system/apperr"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// InternalKeyHeader carries the shared secret on identity event calls.
const InternalKeyHeader = "X-Internal-Key"

// Caller is the authenticated identity of a request.
type Caller struct {
	ID    string
	Name  string
	Email string
}

// Claims is the token payload.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// FailFunc writes an authentication failure.
type FailFunc func(w http.ResponseWriter, r *http.Request, err error)

// Verifier checks bearer tokens.
type Verifier struct {
	secret []byte
	issuer string
	log    *zap.Logger
	fail   FailFunc
}

// NewVerifier builds a Verifier. issuer may be empty to skip the iss check.
// fail may be nil, in which case a plain 401 is written.
func NewVerifier(secret, issuer string, logger *zap.Logger, fail FailFunc) *Verifier {
	if fail == nil {
		fail = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, log: logger, fail: fail}
}

var (
	errNoToken  = errors.New("auth: missing bearer token")
	errNoSecret = errors.New("auth: no signing secret configured")
)

// Verify parses and validates a raw token.
func (v *Verifier) Verify(raw string) (Caller, error) {
	if len(v.secret) == 0 {
		return Caller{}, errNoSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Caller{}, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Caller{}, errors.New("auth: token has no subject")
	}
	return Caller{ID: claims.Subject, Name: claims.Name, Email: claims.Email}, nil
}

// Require rejects requests without a valid bearer token and stores the caller
// in the request context.
func (v *Verifier) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearer(r)
		if !ok {
			v.fail(w, r, apperr.Wrap(apperr.Unauthenticated, "Sign in required.", errNoToken))
			return
		}
		c, err := v.Verify(raw)
		if err != nil {
			v.log.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			v.fail(w, r, apperr.Wrap(apperr.Unauthenticated, "Invalid or expired token.", err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), c)))
	})
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// IssueToken signs a token for c. Used by the dev tooling and tests.
func IssueToken(secret, issuer string, c Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  c.Name,
		Email: c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireInternalKey guards server-to-server endpoints with a shared secret.
// An empty key rejects everything.
func RequireInternalKey(key string, fail FailFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(InternalKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				if fail != nil {
					fail(w, r, apperr.New(apperr.Unauthenticated, "Invalid internal key."))
				} else {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ctxKey struct{}

// WithCaller stores c in ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// CurrentCaller returns the caller stored by Require.
func CurrentCaller(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(Caller)
	return c, ok && c.ID != ""
}

// WithTestCaller injects c into r, bypassing token verification.
func WithTestCaller(r *http.Request, c Caller) *http.Request {
	return r.WithContext(WithCaller(r.Context(), c))
}
