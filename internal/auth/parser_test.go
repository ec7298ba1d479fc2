package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/haulbridge/freight-tasks/internal/model"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParse(t *testing.T) {
	parser := NewParser("test-secret")
	token := signToken(t, "test-secret", Claims{
		UserID:   42,
		Role:     "carrier",
		Approved: true,
		Active:   true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	principal, err := parser.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if principal.UserID != 42 {
		t.Errorf("UserID = %d, want 42", principal.UserID)
	}
	if principal.Role != model.RoleCarrier {
		t.Errorf("Role = %s, want CARRIER (normalized)", principal.Role)
	}
	if !principal.Approved || !principal.Active {
		t.Errorf("approved/active flags not carried over")
	}
}

func TestParseRejects(t *testing.T) {
	parser := NewParser("test-secret")

	expired := signToken(t, "test-secret", Claims{
		UserID: 1,
		Role:   "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	if _, err := parser.Parse(expired); err == nil {
		t.Errorf("expired token accepted")
	}

	wrongKey := signToken(t, "other-secret", Claims{UserID: 1, Role: "ADMIN"})
	if _, err := parser.Parse(wrongKey); err == nil {
		t.Errorf("token signed with wrong key accepted")
	}

	badRole := signToken(t, "test-secret", Claims{
		UserID: 1,
		Role:   "driver",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := parser.Parse(badRole); err == nil {
		t.Errorf("token with unknown role accepted")
	}

	noUser := signToken(t, "test-secret", Claims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := parser.Parse(noUser); err == nil {
		t.Errorf("token without user_id accepted")
	}
}
