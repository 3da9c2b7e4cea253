package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/zaloga/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, 1, "admin", model.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 1 || claims.Username != "admin" || claims.Role != model.RoleAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != Issuer || claims.ID == "" {
		t.Errorf("expected issuer %q and a token id, got %q and %q", Issuer, claims.Issuer, claims.ID)
	}

	diff := time.Until(claims.ExpiresAt.Time) - TokenExpiry
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

func TestGenerateTokenEmptySecret(t *testing.T) {
	if _, err := GenerateToken("", 1, "admin", model.RoleAdmin); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestValidateTokenRejects(t *testing.T) {
	secret := "secret1"
	good, _ := GenerateToken(secret, 1, "admin", model.RoleAdmin)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	foreignToken, _ := foreign.SignedString([]byte(secret))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, _ := expired.SignedString([]byte(secret))

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
	})
	noExpiryToken, _ := noExpiry.SignedString([]byte(secret))

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	hs512Token, _ := hs512.SignedString([]byte(secret))

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "secret2", good},
		{"garbage", secret, "not-a-token"},
		{"foreign issuer", secret, foreignToken},
		{"expired", secret, expiredToken},
		{"no expiry", secret, noExpiryToken},
		{"other algorithm", secret, hs512Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(tt.secret, tt.token); err == nil {
				t.Error("expected error")
			}
		})
	}
}
