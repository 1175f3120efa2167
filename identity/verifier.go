package identity

import (
	"context"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-playground/errors/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Audience is the audience the identity provider stamps on user access tokens.
const Audience = "authenticated"

// Claims are the access-token claims the auth layer relies on.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	SessionID string
	ExpiresAt time.Time
}

// accessClaims is the JWT body of an access token.
type accessClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
}

// Issuer returns the token issuer for the project at baseURL.
func Issuer(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/v1"
}

var (
	_ Verifier = &HS256Verifier{}
	_ Verifier = &JWKSVerifier{}
)

// HS256Verifier verifies tokens signed with the project's shared JWT secret.
type HS256Verifier struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

// NewHS256Verifier returns a verifier for tokens issued by the project at
// baseURL and signed with secret.
func NewHS256Verifier(baseURL, secret string) *HS256Verifier {
	issuer := Issuer(baseURL)

	return &HS256Verifier{
		secret: []byte(secret),
		issuer: issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithAudience(Audience),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify implements Verifier.
func (v *HS256Verifier) Verify(_ context.Context, rawToken string) (*Claims, error) {
	if rawToken == "" {
		return nil, errors.Wrap(ErrRejected, "empty token")
	}

	claims := &accessClaims{}
	token, err := v.parser.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf("unexpected signing method %v", token.Header["alg"])
		}

		return v.secret, nil
	})
	if err != nil {
		return nil, errors.Wrapf(ErrRejected, "jwt.Parser.ParseWithClaims(): %s", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.Wrap(ErrRejected, "invalid token claims")
	}

	c := &Claims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		SessionID: claims.SessionID,
	}
	if claims.ExpiresAt != nil {
		c.ExpiresAt = claims.ExpiresAt.Time
	}

	return c, nil
}

// JWKSVerifier verifies tokens signed with the project's asymmetric keys,
// fetched from its JWKS endpoint.
type JWKSVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewJWKSVerifier returns a verifier that loads signing keys from the
// project's JWKS endpoint on demand. ctx scopes the key fetches.
func NewJWKSVerifier(ctx context.Context, baseURL string) *JWKSVerifier {
	issuer := Issuer(baseURL)
	keySet := oidc.NewRemoteKeySet(ctx, issuer+"/.well-known/jwks.json")

	return newKeySetVerifier(issuer, keySet)
}

func newKeySetVerifier(issuer string, keySet oidc.KeySet) *JWKSVerifier {
	return &JWKSVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{
			ClientID:             Audience,
			SupportedSigningAlgs: []string{oidc.RS256, oidc.ES256},
		}),
	}
}

// Verify implements Verifier.
func (v *JWKSVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	if rawToken == "" {
		return nil, errors.Wrap(ErrRejected, "empty token")
	}

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, errors.Wrapf(ErrRejected, "oidc.IDTokenVerifier.Verify(): %s", err)
	}

	var extra struct {
		Email     string `json:"email"`
		Role      string `json:"role"`
		SessionID string `json:"session_id"`
	}
	if err := token.Claims(&extra); err != nil {
		return nil, errors.Wrap(err, "oidc.IDToken.Claims()")
	}

	return &Claims{
		Subject:   token.Subject,
		Email:     extra.Email,
		Role:      extra.Role,
		SessionID: extra.SessionID,
		ExpiresAt: token.Expiry,
	}, nil
}
