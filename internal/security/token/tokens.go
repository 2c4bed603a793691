package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateBackupCodes genera n códigos numéricos de digits dígitos con
// crypto/rand. Son single-use: el caller los hashea antes de guardar.
func GenerateBackupCodes(n, digits int) ([]string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return nil, err
		}
		codes = append(codes, fmt.Sprintf("%0*d", digits, v))
	}
	return codes, nil
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding.
// Es el formato con el que se persisten backup codes y tokens one-shot:
// nunca el valor en claro, y el match es siempre exacto (jamás substring).
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
