package service

import (
	"context"
	"errors"
	"testing"
	"time"

	cachemem "github.com/dropDatabas3/bookjohn/internal/cache/memory"
	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
	"github.com/dropDatabas3/bookjohn/internal/security/password"
	"github.com/dropDatabas3/bookjohn/internal/security/totp"
	"github.com/dropDatabas3/bookjohn/internal/store/memory"
)

// Costo bajo de argon2id para no pagar 64MB por intento en la suite.
var cheapHash = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

type authFixture struct {
	users *memory.UserStore
	devs  *memory.MFAStore
	mfa   *MFAService
	svc   *AuthService
	user  *repository.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := memory.NewUserStore()
	devs := memory.NewMFAStore()
	mfa := NewMFAService(devs, users, "BookJohn", 1)
	svc := NewAuthService(users, devs, mfa, cachemem.New(time.Minute), time.Minute, time.Minute, 1)

	hash, err := password.Hash(cheapHash, "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}
	u, err := users.Create(context.Background(), repository.CreateUserInput{
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatal(err)
	}
	return &authFixture{users: users, devs: devs, mfa: mfa, svc: svc, user: u}
}

func (f *authFixture) at(t time.Time) {
	f.svc.now = func() time.Time { return t }
	f.mfa.now = func() time.Time { return t }
}

// enrollVerified deja al usuario con un dispositivo TOTP verificado en t0.
func (f *authFixture) enrollVerified(t *testing.T, t0 time.Time) *Enrollment {
	t.Helper()
	f.at(t0)
	enr, err := f.mfa.Setup(context.Background(), f.user.ID, "phone")
	if err != nil {
		t.Fatal(err)
	}
	code, err := totp.GenerateCode(enr.Secret, t0)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.mfa.Verify(context.Background(), enr.Device.ID, f.user.ID, code); err != nil {
		t.Fatal(err)
	}
	return enr
}

func TestAuthenticate_PasswordOnly(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	u, err := f.svc.Authenticate(ctx, "alice", "hunter2hunter2", "")
	if err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if u.LastLoginAt == nil {
		t.Fatal("successful login must stamp last-login")
	}
	if _, err := f.svc.Authenticate(ctx, "alice@x.com", "hunter2hunter2", ""); err != nil {
		t.Fatalf("login by email: %v", err)
	}
}

func TestAuthenticate_FailuresCollapseToUnauthorized(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		id, pass string
	}{
		{"unknown user", "nobody", "hunter2hunter2"},
		{"wrong password", "alice", "wrong-password"},
	}
	for _, c := range cases {
		_, err := f.svc.Authenticate(ctx, c.id, c.pass, "")
		if !errors.Is(err, repository.ErrUnauthorized) {
			t.Fatalf("%s: %v", c.name, err)
		}
		// todos los fallos comparten el mismo mensaje, sin filtrar el paso
		if err.Error() != errBadCredentials.Error() {
			t.Fatalf("%s: message leaks the failing step: %q", c.name, err)
		}
	}
}

func TestAuthenticate_InactiveUserRejected(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	inactive := false
	if _, err := f.users.Update(ctx, f.user.ID, repository.UpdateUserInput{
		Username: "alice", Email: "alice@x.com", Active: &inactive,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Authenticate(ctx, "alice", "hunter2hunter2", ""); !errors.Is(err, repository.ErrUnauthorized) {
		t.Fatalf("inactive user: %v", err)
	}
}

func TestAuthenticate_MFARequiresCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	t0 := time.Unix(1700000000, 0).UTC()
	enr := f.enrollVerified(t, t0)

	// password correcto sin código: rechazado
	if _, err := f.svc.Authenticate(ctx, "alice", "hunter2hunter2", ""); !errors.Is(err, repository.ErrUnauthorized) {
		t.Fatalf("mfa without code: %v", err)
	}

	// un rato después (contador nuevo, fuera del anti-replay de verify)
	t1 := t0.Add(90 * time.Second)
	f.at(t1)
	code, err := totp.GenerateCode(enr.Secret, t1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Authenticate(ctx, "alice", "hunter2hunter2", code); err != nil {
		t.Fatalf("valid totp login: %v", err)
	}

	// replay del mismo código en el mismo instante: rechazado
	if _, err := f.svc.Authenticate(ctx, "alice", "hunter2hunter2", code); !errors.Is(err, repository.ErrUnauthorized) {
		t.Fatalf("totp replay: %v", err)
	}

	// código TOTP correcto pero password incorrecto: rechazado
	t2 := t1.Add(90 * time.Second)
	f.at(t2)
	code2, _ := totp.GenerateCode(enr.Secret, t2)
	if _, err := f.svc.Authenticate(ctx, "alice", "wrong-password", code2); !errors.Is(err, repository.ErrUnauthorized) {
		t.Fatalf("bad password with good code: %v", err)
	}
}

func TestAuthenticate_BackupCodePath(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	t0 := time.Unix(1700000000, 0).UTC()
	enr := f.enrollVerified(t, t0)

	backup := enr.BackupCodes[0]
	if _, err := f.svc.Authenticate(ctx, "alice", "hunter2hunter2", backup); err != nil {
		t.Fatalf("backup code login: %v", err)
	}
	// single-use: el mismo código ya no sirve
	if _, err := f.svc.Authenticate(ctx, "alice", "hunter2hunter2", backup); !errors.Is(err, repository.ErrUnauthorized) {
		t.Fatalf("backup code reuse: %v", err)
	}
}

func TestEmailVerification_OneShotToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tok, err := f.svc.StartEmailVerification(ctx, f.user.ID)
	if err != nil {
		t.Fatal(err)
	}

	// el token es de alice, no de otro usuario
	if err := f.svc.ConfirmEmailVerification(ctx, f.user.ID+1, tok); err == nil {
		t.Fatal("token accepted for another user")
	}
	// nota: el intento anterior falló por usuario inexistente, el token sigue vivo
	if err := f.svc.ConfirmEmailVerification(ctx, f.user.ID, tok); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	u, _ := f.users.GetByID(ctx, f.user.ID)
	if !u.EmailVerified {
		t.Fatal("email not marked verified")
	}
	// one-shot: el segundo confirm falla
	if err := f.svc.ConfirmEmailVerification(ctx, f.user.ID, tok); !errors.Is(err, repository.ErrInvalidInput) {
		t.Fatalf("token replay: %v", err)
	}
}

func TestPasswordReset_Flow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartPasswordReset(ctx, "ghost@x.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown email: %v", err)
	}

	tok, err := f.svc.StartPasswordReset(ctx, "alice@x.com")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.ConfirmPasswordReset(ctx, tok, "short"); !errors.Is(err, repository.ErrInvalidInput) {
		t.Fatalf("short password: %v", err)
	}
	if err := f.svc.ConfirmPasswordReset(ctx, tok, "new-password-123"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// el password viejo ya no sirve, el nuevo sí
	if _, err := f.svc.Authenticate(ctx, "alice", "hunter2hunter2", ""); !errors.Is(err, repository.ErrUnauthorized) {
		t.Fatalf("old password still valid: %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "alice", "new-password-123", ""); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	// el token de reset es one-shot
	if err := f.svc.ConfirmPasswordReset(ctx, tok, "another-password"); !errors.Is(err, repository.ErrInvalidInput) {
		t.Fatalf("reset token replay: %v", err)
	}
}
