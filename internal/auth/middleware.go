package auth

import (
	"github.com/freitasmatheusrn/olist-helper/internal/user"
	"github.com/freitasmatheusrn/olist-helper/pkg/auth"
	"github.com/freitasmatheusrn/olist-helper/pkg/rest"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// SessionCookie is where the dashboard keeps the session token.
const SessionCookie = "next-auth.session-token"

// Middleware verifies the session token and stores the CurrentUser in the
// context. An empty secret disables verification entirely.
func Middleware(jwtSecret string) echo.MiddlewareFunc {
	if jwtSecret == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return echojwt.WithConfig(echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.SessionClaims)
		},
		SigningKey:  []byte(jwtSecret),
		TokenLookup: "header:Authorization:Bearer ,cookie:" + SessionCookie,
		SuccessHandler: func(c echo.Context) {
			claims, apiErr := auth.GetClaims(c)
			if apiErr != nil {
				return
			}
			user.SetCurrentUser(c, user.CurrentUser{
				ID:    claims.Subject,
				Name:  claims.Name,
				Email: claims.Email,
				Role:  claims.Role,
			})
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return rest.NewUnauthorizedRequestError("sessão inválida ou expirada")
		},
	})
}
