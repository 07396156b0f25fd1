package auth

import (
	"strings"
	"testing"
	"time"
)

func TestTokenService(t *testing.T) {
	ts := TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "movierec-test",
		Duration: time.Hour,
	}
	user := &User{ID: "u-1", Username: "alice", IsAdmin: true}

	t.Run("sign and parse round trip", func(t *testing.T) {
		token, exp, err := ts.Sign(user)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if until := time.Until(exp); until < 59*time.Minute || until > time.Hour {
			t.Errorf("expiry %v out of expected window", exp)
		}

		claims, err := ts.Parse(token)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if claims.UserID != user.ID || claims.Username != user.Username || !claims.IsAdmin {
			t.Errorf("claims = %+v, want subject %s/%s admin", claims, user.ID, user.Username)
		}
		if claims.Issuer != ts.Issuer {
			t.Errorf("issuer = %q, want %q", claims.Issuer, ts.Issuer)
		}
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := TokenService{Secret: []byte("wrong"), Issuer: ts.Issuer, Duration: ts.Duration}
		token, _, err := other.Sign(user)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := ts.Parse(token); err == nil {
			t.Error("expected signature verification to fail")
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := TokenService{Secret: ts.Secret, Issuer: ts.Issuer, Duration: -time.Minute}
		token, _, err := expired.Sign(user)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := ts.Parse(token); err == nil {
			t.Error("expected expired token to fail")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := ts.Parse("not.a.token"); err == nil {
			t.Error("expected parse error")
		}
		if _, err := ts.Parse(strings.Repeat("x", 64)); err == nil {
			t.Error("expected parse error")
		}
	})
}
