package auth

import (
	"time"

	"github.com/freitasmatheusrn/olist-helper/pkg/rest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SessionClaims mirrors the payload the session provider signs for the
// dashboard: who the analyst is and which role they hold.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func NewClaims(subject, email, name, role string, tokenExp int) *SessionClaims {
	return &SessionClaims{
		Email: email,
		Name:  name,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Second * time.Duration(tokenExp))),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func GenerateJWT(claims *SessionClaims, jwtSecret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", err
	}
	return t, nil
}

func GetClaims(c echo.Context) (*SessionClaims, *rest.ApiErr) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, rest.NewUnauthorizedRequestError("token inválido")
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, rest.NewUnauthorizedRequestError("claims inválidas")
	}
	return claims, nil
}
