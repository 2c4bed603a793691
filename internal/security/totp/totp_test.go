package totp

import (
	"strings"
	"testing"
	"time"
)

// Secreto de los vectores RFC 6238 ("12345678901234567890") en base32.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestGenerateCode_RFC6238Vectors(t *testing.T) {
	// Vectores del apéndice B, truncados a 6 dígitos
	cases := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}
	for _, c := range cases {
		got, err := GenerateCode(rfcSecret, time.Unix(c.unix, 0).UTC())
		if err != nil {
			t.Fatalf("GenerateCode err: %v", err)
		}
		if got != c.want {
			t.Fatalf("t=%d: got %s want %s", c.unix, got, c.want)
		}
	}
}

func TestVerify_AcceptsWithinWindow(t *testing.T) {
	now := time.Unix(1111111109, 0).UTC()

	code, err := GenerateCode(rfcSecret, now)
	if err != nil {
		t.Fatal(err)
	}

	if ok, _ := Verify(rfcSecret, code, now, 1, 0); !ok {
		t.Fatal("code for current step rejected")
	}
	// un step tarde, dentro de la ventana +/-1
	if ok, _ := Verify(rfcSecret, code, now.Add(Period*time.Second), 1, 0); !ok {
		t.Fatal("code one step old rejected with window 1")
	}
	// dos steps tarde, fuera de la ventana
	if ok, _ := Verify(rfcSecret, code, now.Add(2*Period*time.Second), 1, 0); ok {
		t.Fatal("code two steps old accepted with window 1")
	}
}

func TestVerify_AntiReplay(t *testing.T) {
	now := time.Unix(2000000000, 0).UTC()

	code, err := GenerateCode(rfcSecret, now)
	if err != nil {
		t.Fatal(err)
	}

	ok, counter := Verify(rfcSecret, code, now, 1, 0)
	if !ok {
		t.Fatal("first use rejected")
	}
	// mismo código, mismo instante, con el contador ya persistido
	if ok, _ := Verify(rfcSecret, code, now, 1, counter); ok {
		t.Fatal("replayed code accepted")
	}
}

func TestVerify_RejectsMalformedCodes(t *testing.T) {
	now := time.Now().UTC()
	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		if ok, _ := Verify(rfcSecret, code, now, 1, 0); ok {
			t.Fatalf("malformed code %q accepted", code)
		}
	}
}

func TestGenerateSecret_Base32NoPadding(t *testing.T) {
	s, err := GenerateSecret()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(s, "=") {
		t.Fatalf("secret has padding: %q", s)
	}
	raw, err := DecodeSecret(s)
	if err != nil {
		t.Fatalf("DecodeSecret err: %v", err)
	}
	if len(raw) != 20 {
		t.Fatalf("secret raw length: got %d want 20", len(raw))
	}
}

func TestOTPAuthURL_ContainsSecretAndIssuer(t *testing.T) {
	u := OTPAuthURL("BookJohn", "alice@x.com", rfcSecret)
	if !strings.HasPrefix(u, "otpauth://totp/") {
		t.Fatalf("unexpected scheme: %q", u)
	}
	if !strings.Contains(u, "secret="+rfcSecret) || !strings.Contains(u, "issuer=BookJohn") {
		t.Fatalf("missing params: %q", u)
	}
}
