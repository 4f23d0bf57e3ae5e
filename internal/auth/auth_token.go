package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	autherrors "go-hrms/internal/auth/errors"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Issue returns an access and a refresh token for id.
func (t *TokenIssuer) Issue(id Identity) (access, refresh string, err error) {
	access, err = t.sign(id, tokenTypeAccess, t.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = t.sign(id, tokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (t *TokenIssuer) sign(id Identity, typ string, ttl time.Duration) (string, error) {
	employeeID := ""
	if id.EmployeeID != nil {
		employeeID = id.EmployeeID.String()
	}
	now := t.now()
	claims := jwt.MapClaims{
		"user_id":     id.UserID.String(),
		"employee_id": employeeID,
		"company_id":  id.CompanyID.String(),
		"role":        id.Role,
		"typ":         typ,
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// ParseRefresh validates a refresh token and returns its user and company ids.
func (t *TokenIssuer) ParseRefresh(token string) (userID, companyID string, err error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", autherrors.ErrInvalidRefreshToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != tokenTypeRefresh {
		return "", "", autherrors.ErrInvalidRefreshToken
	}
	userID, _ = claims["user_id"].(string)
	companyID, _ = claims["company_id"].(string)
	if userID == "" || companyID == "" {
		return "", "", autherrors.ErrInvalidRefreshToken
	}
	return userID, companyID, nil
}
