// Package auth adapts the external token-verification collaborator.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/readhive/liveroom/internal/domain"
)

var ErrInvalidClaim = errors.New("invalid identity claim")

// Verifier validates an identity claim and resolves it to an Identity.
// The issuing side (login, token refresh) is not this subsystem's
// concern.
type Verifier interface {
	Verify(ctx context.Context, claim string) (domain.Identity, error)
}

// identityClaims extends jwt.RegisteredClaims with the profile fields
// the auth service embeds in its tokens.
type identityClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, claim string) (domain.Identity, error) {
	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(claim, claims,
		func(t *jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
	if !token.Valid || claims.Subject == "" {
		return domain.Identity{}, ErrInvalidClaim
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		role = domain.RoleReader
	}
	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	if len(name) > domain.MaxDisplayNameLen {
		name = name[:domain.MaxDisplayNameLen]
	}

	return domain.Identity{
		ID:          domain.IdentityID(claims.Subject),
		DisplayName: name,
		Role:        role,
	}, nil
}

// Sign issues a token the verifier accepts. Exposed for tests and the
// local dev token helper; production tokens come from the auth service.
func (v *JWTVerifier) Sign(id domain.Identity, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = string(id.ID)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		RegisteredClaims: claims,
		Name:             id.DisplayName,
		Role:             string(id.Role),
	})
	return token.SignedString(v.secret)
}
