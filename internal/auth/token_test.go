package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("stage-console", testSecret, time.Hour, ScopeControl)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "stage-console" {
		t.Errorf("Subject = %q", claims.Subject)
	}
	if !claims.HasScope(ScopeControl) {
		t.Errorf("Scopes = %v, want control", claims.Scopes)
	}
	if claims.ID == "" {
		t.Error("token id is empty")
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}
}

func TestGenerateToken_DefaultTTL(t *testing.T) {
	token, err := GenerateToken("ops", testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != defaultTTL {
		t.Errorf("ttl = %v, want %v", ttl, defaultTTL)
	}
}

func TestGenerateToken_Validation(t *testing.T) {
	if _, err := GenerateToken("ops", "", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("empty secret error = %v", err)
	}
	if _, err := GenerateToken("", testSecret, time.Hour); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("empty subject error = %v", err)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := GenerateToken("ops", testSecret, time.Hour, ScopeControl)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	expired := signClaims(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	noExpiry := signClaims(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "ops"}})
	wrongIssuer := signClaims(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	noSubject := signClaims(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "wrong secret", token: valid, secret: "another-secret-that-is-long-enough-too"},
		{name: "garbage", token: "not.a.jwt", secret: testSecret},
		{name: "expired", token: expired, secret: testSecret},
		{name: "no expiry", token: noExpiry, secret: testSecret},
		{name: "wrong issuer", token: wrongIssuer, secret: testSecret},
		{name: "no subject", token: noSubject, secret: testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, tt.secret); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	if _, err := ParseToken(signed, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestAuthorize(t *testing.T) {
	control, _ := GenerateToken("ops", testSecret, time.Hour, ScopeControl)
	readOnly, _ := GenerateToken("viewer", testSecret, time.Hour)

	if _, err := Authorize(control, testSecret, ScopeControl); err != nil {
		t.Errorf("Authorize(control) error = %v", err)
	}
	if _, err := Authorize(readOnly, testSecret, ScopeControl); !errors.Is(err, ErrInsufficientScope) {
		t.Errorf("Authorize(read-only) error = %v, want ErrInsufficientScope", err)
	}
}

func signClaims(t *testing.T, c Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return s
}
