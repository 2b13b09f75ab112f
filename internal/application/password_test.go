package application

import (
	"errors"
	"strings"
	"testing"
)

var testArgon2idParams = Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

func TestHashPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret", testArgon2idParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected hash encoding %q", hash)
	}

	if err := VerifyPassword(hash, "s3cret"); err != nil {
		t.Fatalf("expected password to verify, got %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword("", testArgon2idParams); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"plain":                                 ErrInvalidPasswordHash,
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA": ErrInvalidPasswordHash,
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA": ErrIncompatiblePasswordVersion,
		"$argon2id$v=19$bogus$c2FsdA$aGFzaA":       ErrInvalidPasswordHash,
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA":    ErrInvalidPasswordHash,
	}
	for encoded, want := range cases {
		if err := VerifyPassword(encoded, "x"); !errors.Is(err, want) {
			t.Fatalf("VerifyPassword(%q) = %v, want %v", encoded, err, want)
		}
	}
}
