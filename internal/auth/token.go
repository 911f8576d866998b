package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 12 * time.Hour

var ErrTokenInvalid = errors.New("token invalid")

type Claims struct {
	OperatorID string `json:"operator_id"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies operator tokens with a shared HMAC secret.
// Operators are provisioned outside this service.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

func (i *Issuer) Issue(operatorID string, ttl time.Duration) (string, error) {
	if operatorID == "" {
		return "", errors.New("operator id required")
	}
	now := time.Now()
	claims := Claims{
		OperatorID: operatorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify returns the operator id carried by a valid token.
func (i *Issuer) Verify(token string) (string, error) {
	claims, err := parseClaims(token, i.secret)
	if err != nil {
		return "", err
	}
	return claims.OperatorID, nil
}

var parseClaimsFn = jwt.ParseWithClaims

func parseClaims(token string, secret []byte) (*Claims, error) {
	parsed, err := parseClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.OperatorID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
