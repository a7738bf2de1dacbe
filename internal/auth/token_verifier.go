package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"mealtap/internal/model"
)

// AccessClaims are the claims of a backend-issued access token.
type AccessClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserFetcher resolves the owner of an access token remotely.
type UserFetcher interface {
	GetUser(ctx context.Context, accessToken string) (*model.User, error)
}

// TokenVerifier validates bearer access tokens. With a project JWT secret the
// HS256 signature is checked locally; otherwise the token is accepted only if
// the backend resolves it to a user.
type TokenVerifier struct {
	secret []byte
	users  UserFetcher
	parser *jwt.Parser
}

// NewTokenVerifier creates a verifier. users may be nil when secret is set.
func NewTokenVerifier(secret string, users UserFetcher) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		users:  users,
		parser: jwt.NewParser(jwt.WithExpirationRequired()),
	}
}

// Verify parses raw and returns the validated token carrying *AccessClaims.
func (v *TokenVerifier) Verify(ctx context.Context, raw string) (*jwt.Token, error) {
	if len(v.secret) > 0 {
		token, err := v.parser.ParseWithClaims(raw, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return v.secret, nil
		})
		if err != nil {
			return nil, err
		}
		if !token.Valid {
			return nil, errors.New("invalid token")
		}
		return token, nil
	}

	if v.users == nil {
		return nil, errors.New("no way to verify token")
	}
	user, err := v.users.GetUser(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	token, _, err := v.parser.ParseUnverified(raw, &AccessClaims{})
	if err != nil {
		return nil, err
	}
	claims := token.Claims.(*AccessClaims)
	if claims.Subject != user.ID {
		return nil, errors.New("token subject mismatch")
	}
	token.Valid = true
	return token, nil
}

// PrincipalFromToken builds the session view of a verified bearer token.
func PrincipalFromToken(token *jwt.Token) (*model.Session, error) {
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("invalid claims")
	}
	s := &model.Session{
		AccessToken: token.Raw,
		TokenType:   "bearer",
		User:        model.User{ID: claims.Subject, Email: claims.Email},
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return s, nil
}
