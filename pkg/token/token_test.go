package token

import (
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	signed, exp, err := GenerateJWT("analytics", "admin", "secret", 15)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if time.Until(exp) <= 14*time.Minute {
		t.Errorf("expiry %v is too close", exp)
	}

	claims, err := ValidateJWT(signed, "secret")
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.ClientID != "analytics" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateRejects(t *testing.T) {
	good, _, _ := GenerateJWT("analytics", "", "secret", 15)
	expired, _, _ := GenerateJWT("analytics", "", "secret", -1)
	anonymous, _, _ := GenerateJWT("", "", "secret", 15)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"empty", "", "secret"},
		{"no secret", good, ""},
		{"wrong secret", good, "other"},
		{"expired", expired, "secret"},
		{"no client", anonymous, "secret"},
		{"garbage", "not.a.token", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateJWT(tt.token, tt.secret); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
