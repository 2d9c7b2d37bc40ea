package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/smartexpenses/whiteboard/models"
)

// VerifyJWT checks structure, signature and expiry of a bearer token and
// returns the Subject it carries. Tokens are minted elsewhere; this service
// only verifies. Every failure collapses to ErrUnauthenticated so callers
// cannot distinguish a bad signature from an expired token.
func (s *Service) VerifyJWT(tokenString string) (models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.JWTSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return models.User{}, ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, ErrUnauthenticated
	}

	userId, ok := claims["userId"].(string)
	if !ok || userId == "" {
		return models.User{}, ErrUnauthenticated
	}

	// Display identifier travels in the standard subject claim
	email, err := claims.GetSubject()
	if err != nil || email == "" {
		return models.User{}, ErrUnauthenticated
	}

	return models.User{Id: userId, Email: email}, nil
}

func (s *Service) AuthenticateToken(token string) (models.User, error) {
	if len(token) == 0 {
		return models.User{}, ErrUnauthenticated
	}

	return s.VerifyJWT(token)
}
