package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSessionID = "0190a4a5-6d1f-7c2e-9a55-8e3c0c8f1a01"

func TestGenerateSessionToken_Success(t *testing.T) {
	issuer := "test-issuer"
	duration := time.Hour
	key := "secret-key"

	token, err := GenerateSessionToken(issuer, testSessionID, duration, key)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if token.SignedString == "" {
		t.Error("expected non-empty SignedString")
	}
	if token.Token == nil {
		t.Error("expected non-nil jwt.Token object")
	}
	if token.String() != token.SignedString {
		t.Error("expected String() to return the signed string")
	}

	claims, ok := token.Token.Claims.(jwt.RegisteredClaims)
	if !ok {
		t.Fatalf("could not cast claims to RegisteredClaims, got %T", token.Token.Claims)
	}
	if claims.Issuer != issuer {
		t.Errorf("expected issuer %s, got %s", issuer, claims.Issuer)
	}
	if claims.ID != testSessionID {
		t.Errorf("expected jti %s, got %s", testSessionID, claims.ID)
	}
}

func TestGenerateSessionToken_InvalidParams(t *testing.T) {
	tests := []struct {
		name      string
		issuer    string
		sessionID string
		duration  time.Duration
		key       string
	}{
		{"empty issuer", "", testSessionID, time.Hour, "key"},
		{"empty session id", "iss", "", time.Hour, "key"},
		{"zero duration", "iss", testSessionID, 0, "key"},
		{"empty key", "iss", testSessionID, time.Hour, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateSessionToken(tt.issuer, tt.sessionID, tt.duration, tt.key)
			if err == nil {
				t.Error("expected error for invalid parameters, got nil")
			}
		})
	}
}

func TestValidateAndParseSessionToken_Success(t *testing.T) {
	issuer := "test-issuer"
	key := "secret-key"

	genToken, _ := GenerateSessionToken(issuer, testSessionID, 5*time.Minute, key)

	parsedToken, err := ValidateAndParseSessionToken(genToken.SignedString, key, issuer)

	if err != nil {
		t.Fatalf("expected token to be valid, got error: %v", err)
	}
	if parsedToken.SessionID != testSessionID {
		t.Errorf("expected session id %s, got %s", testSessionID, parsedToken.SessionID)
	}
}

func TestValidateAndParseSessionToken_InvalidKey(t *testing.T) {
	genToken, _ := GenerateSessionToken("test-issuer", testSessionID, time.Hour, "correct-key")

	_, err := ValidateAndParseSessionToken(genToken.SignedString, "wrong-key", "test-issuer")
	if err == nil {
		t.Error("expected error due to signature mismatch, got nil")
	}
}

func TestValidateAndParseSessionToken_Expired(t *testing.T) {
	genToken, _ := GenerateSessionToken("test-issuer", testSessionID, -time.Second, "key")

	_, err := ValidateAndParseSessionToken(genToken.SignedString, "key", "test-issuer")
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateAndParseSessionToken_WrongIssuer(t *testing.T) {
	genToken, _ := GenerateSessionToken("real-issuer", testSessionID, time.Hour, "key")

	_, err := ValidateAndParseSessionToken(genToken.SignedString, "key", "fake-issuer")
	if err == nil {
		t.Error("expected error for issuer mismatch, got nil")
	}
}

func TestValidateAndParseSessionToken_MissingSessionID(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "iss",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("key"))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := ValidateAndParseSessionToken(signed, "key", "iss"); err == nil {
		t.Error("expected error for token without jti, got nil")
	}
}

func TestValidateAndParseSessionToken_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Issuer:    "iss",
		ID:        testSessionID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("key"))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := ValidateAndParseSessionToken(signed, "key", "iss"); err == nil {
		t.Error("expected error for HS512 token, got nil")
	}
}

func TestValidateAndParseSessionToken_Malformed(t *testing.T) {
	_, err := ValidateAndParseSessionToken("not.a.token", "key", "iss")
	if err == nil {
		t.Error("expected error for malformed token string, got nil")
	}
}
