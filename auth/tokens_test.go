package auth

import (
	"errors"
	"testing"
	"time"

	"contractflow/contract"
)

func TestRoleTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret")

	for _, role := range []contract.Role{contract.RoleSupplier, contract.RoleReseller} {
		token, err := svc.IssueRoleToken(role)
		if err != nil {
			t.Fatalf("issue %s: unexpected error: %v", role, err)
		}
		got, err := svc.VerifyRoleToken(token)
		if err != nil {
			t.Fatalf("verify %s: unexpected error: %v", role, err)
		}
		if got != role {
			t.Fatalf("expected role %s, got %s", role, got)
		}
	}
}

func TestIssueRoleToken_RejectsUnknownRole(t *testing.T) {
	svc := NewService("test-secret")
	if _, err := svc.IssueRoleToken("auditor"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestVerifyRoleToken_RejectsGarbage(t *testing.T) {
	svc := NewService("test-secret")
	for _, token := range []string{"", "not-a-token", "aa.bb.cc"} {
		if _, err := svc.VerifyRoleToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestVerifyRoleToken_RejectsWrongSecret(t *testing.T) {
	token, err := NewService("secret-one").IssueRoleToken(contract.RoleSupplier)
	if err != nil {
		t.Fatalf("issue: unexpected error: %v", err)
	}
	if _, err := NewService("secret-two").VerifyRoleToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRoleToken_RejectsExpired(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	issuer := NewService("test-secret").WithClock(func() time.Time { return issued })
	token, err := issuer.IssueRoleToken(contract.RoleReseller)
	if err != nil {
		t.Fatalf("issue: unexpected error: %v", err)
	}

	later := NewService("test-secret").WithClock(func() time.Time {
		return issued.Add(25 * time.Hour)
	})
	if _, err := later.VerifyRoleToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	fresh := NewService("test-secret").WithClock(func() time.Time {
		return issued.Add(time.Hour)
	})
	if role, err := fresh.VerifyRoleToken(token); err != nil || role != contract.RoleReseller {
		t.Fatalf("expected valid reseller token, got role=%s err=%v", role, err)
	}
}
