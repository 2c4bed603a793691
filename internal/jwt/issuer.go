// Package jwt emite y valida los access tokens del servicio.
// Un solo proceso y sin rotación de claves: HS256 con secreto de config
// alcanza; no hace falta el keystore/JWKS de un IdP multi-tenant.
package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken cubre firma inválida, issuer ajeno o token vencido.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims son los claims propios que viajan en el access token.
type Claims struct {
	UserID   int64
	Username string
}

// Issuer firma access tokens HS256.
type Issuer struct {
	Iss       string
	Secret    []byte
	AccessTTL time.Duration
}

// NewIssuer crea un issuer. TTL <= 0 usa 15 minutos.
func NewIssuer(iss, secret string, accessTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &Issuer{Iss: iss, Secret: []byte(secret), AccessTTL: accessTTL}
}

// Sign emite un access token para el usuario. Retorna el JWT firmado y
// los segundos de vigencia (para el campo expires_in de la respuesta).
func (i *Issuer) Sign(userID int64, username string) (string, int64, error) {
	now := time.Now()
	claims := jwtv5.MapClaims{
		"iss":      i.Iss,
		"sub":      strconv.FormatInt(userID, 10),
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(i.AccessTTL).Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(i.AccessTTL.Seconds()), nil
}

// Parse valida firma, método, issuer y expiración, y extrae los claims.
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	tk, err := jwtv5.Parse(tokenStr,
		func(t *jwtv5.Token) (any, error) { return i.Secret, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil || !tk.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	mc, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad sub", ErrInvalidToken)
	}
	username, _ := mc["username"].(string)
	return &Claims{UserID: userID, Username: username}, nil
}
