package auth

import (
	"testing"
	"time"

	"github.com/dibyam12/SMS-backend/internal/model"
)

func newTestIssuer(accessTTL, refreshTTL time.Duration) *Issuer {
	return NewIssuer("access-secret", "refresh-secret", "test-issuer", accessTTL, refreshTTL)
}

func TestIssueAndVerify(t *testing.T) {
	issuer := newTestIssuer(15*time.Minute, 7*24*time.Hour)

	for _, kind := range []Kind{KindAccess, KindRefresh} {
		token, err := issuer.Issue("user-1", model.RoleTeacher, kind)
		if err != nil {
			t.Fatalf("Issue(%s): %v", kind, err)
		}
		claims, err := issuer.Verify(token, kind)
		if err != nil {
			t.Fatalf("Verify(%s): %v", kind, err)
		}
		if claims.UserID != "user-1" {
			t.Errorf("UserID = %q, want user-1", claims.UserID)
		}
		if claims.Role != "teacher" {
			t.Errorf("Role = %q, want teacher", claims.Role)
		}
	}
}

func TestIssuedTokensAreUnique(t *testing.T) {
	issuer := newTestIssuer(15*time.Minute, 7*24*time.Hour)

	// Back-to-back issuance lands within the same second; the tokens must
	// still differ or session rotation degenerates into a no-op.
	for _, kind := range []Kind{KindAccess, KindRefresh} {
		first, err := issuer.Issue("user-1", model.RoleTeacher, kind)
		if err != nil {
			t.Fatal(err)
		}
		second, err := issuer.Issue("user-1", model.RoleTeacher, kind)
		if err != nil {
			t.Fatal(err)
		}
		if first == second {
			t.Fatalf("two %s tokens for the same user are identical", kind)
		}
	}
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	issuer := newTestIssuer(15*time.Minute, 7*24*time.Hour)

	access, err := issuer.Issue("user-1", model.RoleStudent, KindAccess)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Verify(access, KindRefresh); err != ErrInvalidToken {
		t.Fatalf("access token verified as refresh: err = %v", err)
	}

	refresh, err := issuer.Issue("user-1", model.RoleStudent, KindRefresh)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Verify(refresh, KindAccess); err != ErrInvalidToken {
		t.Fatalf("refresh token verified as access: err = %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := newTestIssuer(-time.Minute, -time.Minute)

	token, err := issuer.Issue("user-1", model.RoleAdmin, KindAccess)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Verify(token, KindAccess); err != ErrInvalidToken {
		t.Fatalf("expired token accepted: err = %v", err)
	}
}

func TestVerifyRejectsTampered(t *testing.T) {
	issuer := newTestIssuer(15*time.Minute, 7*24*time.Hour)

	token, err := issuer.Issue("user-1", model.RoleAdmin, KindAccess)
	if err != nil {
		t.Fatal(err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := issuer.Verify(tampered, KindAccess); err != ErrInvalidToken {
		t.Fatalf("tampered token accepted: err = %v", err)
	}
	if _, err := issuer.Verify("not-a-jwt", KindAccess); err != ErrInvalidToken {
		t.Fatalf("garbage accepted: err = %v", err)
	}
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	ours := newTestIssuer(15*time.Minute, 7*24*time.Hour)
	theirs := NewIssuer("access-secret", "refresh-secret", "other-issuer", 15*time.Minute, 7*24*time.Hour)

	token, err := theirs.Issue("user-1", model.RoleAdmin, KindAccess)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ours.Verify(token, KindAccess); err != ErrInvalidToken {
		t.Fatalf("foreign-issuer token accepted: err = %v", err)
	}
}
