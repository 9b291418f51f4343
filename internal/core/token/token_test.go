package token

import (
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	svc, err := NewService(Config{Secret: "test-secret-0123456789abcdef0123456789", TTL: ttl})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestService_IssueVerify_Roundtrip(t *testing.T) {
	svc := newTestService(t, time.Hour)

	raw, err := svc.Issue("user-1", "ann@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", claims.UserID)
	}
	if claims.Email != "ann@x.com" {
		t.Fatalf("expected ann@x.com, got %s", claims.Email)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatalf("expected iat and exp to be set")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("expected 1h lifetime, got %s", got)
	}
}

func TestService_Verify_Expired(t *testing.T) {
	svc := newTestService(t, -time.Minute)

	raw, err := svc.Issue("user-1", "ann@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Correctly signed but past its exp: must be Expired, never Invalid.
	if _, err := svc.Verify(raw); err != ErrExpired {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestService_Verify_TamperedSignature(t *testing.T) {
	svc := newTestService(t, time.Hour)

	raw, err := svc.Issue("user-1", "ann@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	sigStart := strings.LastIndex(raw, ".") + 1
	tampered := raw[:sigStart] + flipChar(raw[sigStart:])
	if _, err := svc.Verify(tampered); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestService_Verify_TamperedPayload(t *testing.T) {
	svc := newTestService(t, time.Hour)

	raw, err := svc.Issue("user-1", "ann@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(raw, ".")
	parts[1] = flipChar(parts[1])
	if _, err := svc.Verify(strings.Join(parts, ".")); err == nil {
		t.Fatalf("tampered payload verified successfully")
	}
}

func TestService_Verify_Malformed(t *testing.T) {
	svc := newTestService(t, time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b"} {
		if _, err := svc.Verify(raw); err != ErrMalformed {
			t.Fatalf("Verify(%q): expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestService_Verify_WrongSecret(t *testing.T) {
	issuer := newTestService(t, time.Hour)
	verifier, err := NewService(Config{Secret: "another-secret-0123456789abcdef01234"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	raw, err := issuer.Issue("user-1", "ann@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(raw); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestNewService_RequiresSecret(t *testing.T) {
	if _, err := NewService(Config{}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestNewService_DefaultTTL(t *testing.T) {
	svc := newTestService(t, 0)
	if svc.TTL() != 7*24*time.Hour {
		t.Fatalf("expected 7 day default TTL, got %s", svc.TTL())
	}
}

// flipChar swaps the first character for a different base64url character so
// the segment stays decodable but its bytes change.
func flipChar(s string) string {
	if s == "" {
		return "A"
	}
	c := byte('A')
	if s[0] == 'A' {
		c = 'B'
	}
	return string(c) + s[1:]
}
