package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tripmarket/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Claims keep the legacy user_id/role keys. The role claim is informational only;
// authorization re-reads the role from the store.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return TokenIssuer{Secret: []byte(secret), TTL: ttl}
}

func (t TokenIssuer) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Issue signs an HS256 session token and returns it with its expiry.
func (t TokenIssuer) Issue(userID string, role domain.Role) (string, time.Time, error) {
	if len(t.Secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	now := t.now()
	exp := now.Add(t.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates the token and returns the session it carries.
func (t TokenIssuer) Parse(raw string) (domain.Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Session{}, domain.UnauthorizedError{Msg: "missing token"}
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		return t.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return domain.Session{}, domain.UnauthorizedError{Msg: fmt.Sprintf("invalid token: %v", err)}
	}
	if claims.UserID == "" {
		return domain.Session{}, domain.UnauthorizedError{Msg: "token has no user"}
	}
	role, _ := domain.ParseRole(claims.Role)
	return domain.Session{UserID: claims.UserID, Role: role}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
