package password

import (
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	encoded, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected PHC prefix: %s", encoded)
	}

	ok, err := h.Verify("correct-horse-battery", encoded)
	if err != nil || !ok {
		t.Fatalf("verify failed: %v %v", ok, err)
	}

	ok, err = h.Verify("wrong-password-1", encoded)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("wrong password verified")
	}
}

func TestHashSaltsAreUnique(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	a, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := h.Hash("short"); err == nil {
		t.Fatal("expected short password rejection")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for _, bad := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	} {
		if _, err := h.Verify("whatever-pass", bad); err == nil {
			t.Fatalf("malformed hash accepted: %q", bad)
		}
	}
}

func TestNewRejectsWeakConfig(t *testing.T) {
	weak := testConfig()
	weak.Memory = 1024

	if _, err := New(weak); err == nil {
		t.Fatal("expected weak memory rejection")
	}
}
