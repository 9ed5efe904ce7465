package main

import "testing"

func TestResolveSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY is empty")
	}

	t.Setenv("SECRET_KEY", "change_me_in_production")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY uses insecure placeholder")
	}

	t.Setenv("SECRET_KEY", "too-short-secret")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY is too short")
	}

	valid := "0123456789abcdef0123456789abcdef"
	t.Setenv("SECRET_KEY", valid)

	secret, err := resolveSecretKey()
	if err != nil {
		t.Fatalf("expected valid secret, got error: %v", err)
	}
	if secret != valid {
		t.Fatalf("expected %q, got %q", valid, secret)
	}
}

func TestRunCommandRejectsUnknownAndMalformed(t *testing.T) {
	t.Parallel()

	if err := runCommand("frobnicate", nil, "unused.db"); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if err := runCommand("reset-password", nil, "unused.db"); err == nil {
		t.Fatal("expected usage error when email argument is missing")
	}
	if err := runCommand("create-professional", []string{"a@b.c", "extra"}, "unused.db"); err == nil {
		t.Fatal("expected usage error for extra arguments")
	}
}
