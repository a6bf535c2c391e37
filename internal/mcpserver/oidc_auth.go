package mcpserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// OIDCAuthMiddleware validates Bearer ID tokens against an OIDC provider.
type OIDCAuthMiddleware struct {
	verifier      tokenVerifier
	enableLogging bool
}

// tokenVerifier lets tests substitute the OIDC verifier.
type tokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*oidc.IDToken, error)
}

// NewOIDCAuthMiddleware discovers the provider configuration from issuer and
// builds a verifier checking the given audience.
func NewOIDCAuthMiddleware(ctx context.Context, issuer, audience string, enableLogging bool) (*OIDCAuthMiddleware, error) {
	if issuer == "" {
		return nil, fmt.Errorf("OIDC issuer is required")
	}
	if audience == "" {
		return nil, fmt.Errorf("OIDC audience is required")
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("OIDC discovery failed for %s: %w", issuer, err)
	}

	return &OIDCAuthMiddleware{
		verifier:      provider.Verifier(&oidc.Config{ClientID: audience}),
		enableLogging: enableLogging,
	}, nil
}

// NewOIDCAuthMiddlewareWithVerifier injects a custom verifier (tests).
func NewOIDCAuthMiddlewareWithVerifier(verifier tokenVerifier, enableLogging bool) *OIDCAuthMiddleware {
	return &OIDCAuthMiddleware{verifier: verifier, enableLogging: enableLogging}
}

// Middleware returns the HTTP middleware function. Requests without a valid
// Bearer token are rejected with 401.
func (m *OIDCAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		idToken, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			if m.enableLogging {
				log.Printf("token verification failed: %v", err)
			}
			unauthorized(w, "invalid token")
			return
		}

		if m.enableLogging {
			log.Printf("authenticated subject %s (expires %s)", idToken.Subject, tokenExpiry(token))
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// tokenExpiry extracts the exp claim for logging. The token has already been
// verified, so an unverified parse is safe here.
func tokenExpiry(rawToken string) string {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return "unknown"
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "unknown"
	}
	return exp.Time.UTC().Format("2006-01-02T15:04:05Z")
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":{"code":-32600,"message":"%s"}}`, message)
}
