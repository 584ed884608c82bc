package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dibyam12/SMS-backend/internal/auth"
	"github.com/dibyam12/SMS-backend/internal/model"
	"github.com/dibyam12/SMS-backend/internal/service/servicetest"
	"github.com/dibyam12/SMS-backend/internal/session"
)

func newTestAuth(t *testing.T) (*Auth, *servicetest.FakeUsers, *servicetest.MemSessions) {
	t.Helper()
	users := servicetest.NewFakeUsers()
	sessions := servicetest.NewMemSessions()
	issuer := auth.NewIssuer("a-secret", "r-secret", "test", 15*time.Minute, 7*24*time.Hour)
	return NewAuth(users, sessions, issuer, nil), users, sessions
}

func registerInput() RegisterInput {
	return RegisterInput{
		Email:     "jane@example.com",
		Username:  "jane",
		Password:  "pass1234",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      "teacher",
		IsStaff:   true,
	}
}

func TestRegisterThenLogin(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerInput(), "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != model.RoleTeacher {
		t.Errorf("Role = %q, want teacher", user.Role)
	}
	if user.PasswordHash == "pass1234" {
		t.Error("password stored in plaintext")
	}
	if !user.IsActive {
		t.Error("new user not active")
	}

	pair, err := svc.Login(ctx, "jane", "pass1234", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("empty token pair")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens are identical")
	}

	if len(users.Audits) != 2 {
		t.Errorf("audit entries = %d, want 2", len(users.Audits))
	}
}

func TestLoginByEmail(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput(), ""); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, "Jane@Example.com", "pass1234", ""); err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if _, err := svc.Login(ctx, "jane@example.com", "wrong", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password by email: err = %v", err)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	input := registerInput()
	input.Email = "  Jane@Example.COM "

	user, err := svc.Register(context.Background(), input, "")
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "jane@example.com" {
		t.Fatalf("Email = %q", user.Email)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	cases := map[string]func(*RegisterInput){
		"empty email":    func(in *RegisterInput) { in.Email = "" },
		"empty username": func(in *RegisterInput) { in.Username = "" },
		"empty password": func(in *RegisterInput) { in.Password = "" },
		"empty first":    func(in *RegisterInput) { in.FirstName = " " },
		"empty last":     func(in *RegisterInput) { in.LastName = "" },
		"unknown role":   func(in *RegisterInput) { in.Role = "superuser" },
	}
	for name, mutate := range cases {
		input := registerInput()
		mutate(&input)
		if _, err := svc.Register(ctx, input, ""); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", name, err)
		}
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput(), ""); err != nil {
		t.Fatal(err)
	}

	// Same email, different username: email check fires first.
	input := registerInput()
	input.Username = "jane2"
	if _, err := svc.Register(ctx, input, ""); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("duplicate email: err = %v", err)
	}

	input = registerInput()
	input.Email = "other@example.com"
	if _, err := svc.Register(ctx, input, ""); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("duplicate username: err = %v", err)
	}
}

func TestLoginRejectionsAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput(), ""); err != nil {
		t.Fatal(err)
	}

	_, unknownErr := svc.Login(ctx, "nobody", "pass1234", "")
	_, wrongPassErr := svc.Login(ctx, "jane", "bad-pass", "")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown user: err = %v", unknownErr)
	}
	if !errors.Is(wrongPassErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v", wrongPassErr)
	}
	if unknownErr.Error() != wrongPassErr.Error() {
		t.Fatal("unknown-user and wrong-password errors differ")
	}
}

func TestSecondLoginInvalidatesFirstSession(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput(), ""); err != nil {
		t.Fatal(err)
	}
	first, err := svc.Login(ctx, "jane", "pass1234", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, "jane", "pass1234", ""); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("first session refresh after second login: err = %v, want ErrTokenMismatch", err)
	}
}

func TestRefreshRotationIsSingleUse(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput(), ""); err != nil {
		t.Fatal(err)
	}
	pair, err := svc.Login(ctx, "jane", "pass1234", "")
	if err != nil {
		t.Fatal(err)
	}

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token not rotated")
	}

	// The spent token must not work a second time.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatal("spent refresh token accepted")
	}

	// The replacement works.
	if _, err := svc.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("rotated token rejected: %v", err)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	if _, err := svc.Refresh(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestLogoutThenRefreshFails(t *testing.T) {
	svc, _, sessions := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput(), ""); err != nil {
		t.Fatal(err)
	}
	pair, err := svc.Login(ctx, "jane", "pass1234", "")
	if err != nil {
		t.Fatal(err)
	}

	svc.Logout(ctx, pair.RefreshToken)
	if len(sessions.Entries) != 0 {
		t.Fatal("session entry survives logout")
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("refresh after logout: err = %v, want ErrSessionRevoked", err)
	}

	// Logging out again, or with garbage, is silent.
	svc.Logout(ctx, pair.RefreshToken)
	svc.Logout(ctx, "junk")
	svc.Logout(ctx, "")
}

func TestRefreshDisabledWithoutSessionStore(t *testing.T) {
	users := servicetest.NewFakeUsers()
	issuer := auth.NewIssuer("a-secret", "r-secret", "test", 15*time.Minute, 7*24*time.Hour)
	svc := NewAuth(users, session.Disabled(), issuer, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput(), ""); err != nil {
		t.Fatal(err)
	}
	pair, err := svc.Login(ctx, "jane", "pass1234", "")
	if err != nil {
		t.Fatalf("login without session store: %v", err)
	}

	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrRefreshDisabled) {
		t.Fatalf("err = %v, want ErrRefreshDisabled", err)
	}
}
