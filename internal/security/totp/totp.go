package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

// Period es el time-step RFC 6238 en segundos.
const Period = 30

// Digits es el largo de los códigos generados.
const Digits = 6

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret retorna 20 bytes random en base32 sin padding (RFC 3548).
func GenerateSecret() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return b32.EncodeToString(raw), nil
}

// DecodeSecret decodifica un secreto base32 (acepta minúsculas y padding).
func DecodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimRight(strings.TrimSpace(secret), "="))
	return b32.DecodeString(s)
}

// OTPAuthURL construye la URL otpauth:// para el QR del authenticator.
func OTPAuthURL(issuer, accountName, secretB32 string) string {
	label := url.PathEscape(fmt.Sprintf("%s:%s", issuer, accountName))
	q := url.Values{}
	q.Set("secret", secretB32)
	q.Set("issuer", issuer)
	q.Set("algorithm", "SHA1")
	q.Set("digits", fmt.Sprintf("%d", Digits))
	q.Set("period", fmt.Sprintf("%d", Period))
	return fmt.Sprintf("otpauth://totp/%s?%s", label, q.Encode())
}

// GenerateCode genera el código para el time-step que contiene a t.
// Lo usan los tests y el CLI; el server solo verifica.
func GenerateCode(secretB32 string, t time.Time) (string, error) {
	raw, err := DecodeSecret(secretB32)
	if err != nil {
		return "", err
	}
	return hotp(raw, t.Unix()/Period), nil
}

// Verify chequea el código en ventana +/- windowSteps alrededor de t.
// Los steps <= lastCounterUsed se saltean (anti-replay): un código aceptado
// no puede reusarse dentro de su ventana. Retorna el contador aceptado para
// que el caller lo persista.
func Verify(secretB32, code string, t time.Time, windowSteps int, lastCounterUsed int64) (ok bool, counter int64) {
	code = strings.TrimSpace(code)
	if len(code) != Digits {
		return false, 0
	}
	raw, err := DecodeSecret(secretB32)
	if err != nil {
		return false, 0
	}
	counter = t.Unix() / Period
	for c := counter - int64(windowSteps); c <= counter+int64(windowSteps); c++ {
		if c <= lastCounterUsed {
			continue
		}
		if hmac.Equal([]byte(hotp(raw, c)), []byte(code)) {
			return true, c
		}
	}
	return false, 0
}

// hotp implementa HOTP(K, C) con HMAC-SHA1 (RFC 4226 / 6238).
func hotp(secretRaw []byte, counter int64) string {
	var msg [8]byte
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter & 0xff)
		counter >>= 8
	}
	m := hmac.New(sha1.New, secretRaw)
	_, _ = m.Write(msg[:])
	sum := m.Sum(nil)
	offset := int(sum[len(sum)-1] & 0x0f)
	bin := (int(sum[offset])&0x7f)<<24 | int(sum[offset+1])<<16 | int(sum[offset+2])<<8 | int(sum[offset+3])
	return fmt.Sprintf("%0*d", Digits, bin%int(math.Pow10(Digits)))
}
