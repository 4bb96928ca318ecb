package auth

import (
	"testing"
	"time"

	"github.com/arcadialabs/landgrid-backend/pkg/config"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "landgrid-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		Wallet: "0xalice",
		Role:   enums.ActorRolePlayer,
		JTI:    "session-1",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Wallet != "0xalice" {
		t.Fatalf("unexpected wallet %q", claims.Wallet)
	}
	if claims.Role != enums.ActorRolePlayer {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if claims.ID != "session-1" {
		t.Fatalf("unexpected jti %q", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestMintRejectsInvalidPayload(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	if _, err := MintAccessToken(cfg, now, AccessTokenPayload{Role: enums.ActorRolePlayer}); err == nil {
		t.Fatal("expected error for missing wallet")
	}
	if _, err := MintAccessToken(cfg, now, AccessTokenPayload{Wallet: "0xalice", Role: "emperor"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
	bad := cfg
	bad.Secret = ""
	if _, err := MintAccessToken(bad, now, AccessTokenPayload{Wallet: "0xalice", Role: enums.ActorRolePlayer}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		Wallet: "0xalice",
		Role:   enums.ActorRolePlayer,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature validation failure")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	past := time.Now().UTC().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, past, AccessTokenPayload{
		Wallet: "0xalice",
		Role:   enums.ActorRolePlayer,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expiry failure")
	}
	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("allow-expired parse: %v", err)
	}
	if claims.Wallet != "0xalice" {
		t.Fatalf("unexpected wallet %q", claims.Wallet)
	}
}
