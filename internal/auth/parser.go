package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/haulbridge/freight-tasks/internal/model"
)

// Claims is the access-token payload issued by the identity service.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	Approved bool   `json:"approved"`
	Active   bool   `json:"active"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// Parse validates an HS256 access token and returns the caller's Principal.
func (p *Parser) Parse(token string) (model.Principal, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}
	if !parsed.Valid {
		return model.Principal{}, fmt.Errorf("invalid token")
	}
	if claims.UserID == 0 {
		return model.Principal{}, fmt.Errorf("token has no user_id")
	}
	role, ok := model.ParseRole(claims.Role)
	if !ok {
		return model.Principal{}, fmt.Errorf("token has unknown role %q", claims.Role)
	}
	return model.Principal{
		UserID:   claims.UserID,
		Role:     role,
		Approved: claims.Approved,
		Active:   claims.Active,
	}, nil
}
