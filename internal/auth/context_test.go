package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithClaimsAndFromContext(t *testing.T) {
	ctx := WithClaims(context.Background(), Claims{UserID: "u1", DeviceID: "d1"})

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected claims in context")
	}
	if got.UserID != "u1" || got.DeviceID != "d1" {
		t.Errorf("claims = %+v", got)
	}
	if UserID(ctx) != "u1" {
		t.Errorf("UserID = %q, want u1", UserID(ctx))
	}
}

func TestUserIDEmptyContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected no claims")
	}
	if id := UserID(context.Background()); id != "" {
		t.Errorf("UserID = %q, want empty", id)
	}
}

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := IssueToken(secret, "user-7", "phone", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	c, err := ParseToken(secret, tok)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if c.UserID != "user-7" || c.DeviceID != "phone" {
		t.Errorf("claims = %+v", c)
	}
	if c.TokenID == "" {
		t.Error("expected a token id")
	}
}

func TestParseTokenRejects(t *testing.T) {
	secret := []byte("test-secret")
	expired, err := IssueToken(secret, "u", "", time.Minute, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	other, err := IssueToken([]byte("other"), "u", "", 0, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	noSubject, err := IssueToken(secret, "", "", 0, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"expired":      expired,
		"wrong secret": other,
		"no subject":   noSubject,
		"garbage":      "not.a.token",
	}
	for name, tok := range cases {
		if _, err := ParseToken(secret, tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: err = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestNoSecret(t *testing.T) {
	if _, err := IssueToken(nil, "u", "", 0, time.Now()); !errors.Is(err, ErrNoSecret) {
		t.Errorf("IssueToken err = %v", err)
	}
	if _, err := ParseToken(nil, "x"); !errors.Is(err, ErrNoSecret) {
		t.Errorf("ParseToken err = %v", err)
	}
}
