package session

import (
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !m.Verify("user-1", token) {
		t.Fatal("expected token to verify for its own user")
	}
}

func TestIssueDeterministicUnderFixedClock(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	first, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	second, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if first != second {
		t.Errorf("tokens differ under a fixed clock:\n%s\n%s", first, second)
	}
}

func TestVerifyRejectsMutatedToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Corrupt the leading character of each token segment; none may verify.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	offset := 0
	for _, part := range parts {
		mutated := []byte(token)
		if mutated[offset] == 'A' {
			mutated[offset] = 'B'
		} else {
			mutated[offset] = 'A'
		}
		if m.Verify("user-1", string(mutated)) {
			t.Fatalf("mutated token at position %d verified", offset)
		}
		offset += len(part) + 1
	}
}

func TestVerifyRejectsWrongUser(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if m.Verify("user-2", token) {
		t.Fatal("token for user-1 verified for user-2")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	other, err := NewManager("other-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if other.Verify("user-1", token) {
		t.Fatal("token verified under a different secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issuedAt }

	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	m.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if m.Verify("user-1", token) {
		t.Fatal("expired token verified")
	}
}

func TestVerifyRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if m.Verify("user-1", tok) {
			t.Errorf("malformed token %q verified", tok)
		}
	}
	if m.Verify("", "") {
		t.Error("empty credentials verified")
	}
}
