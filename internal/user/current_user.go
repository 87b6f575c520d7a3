package user

import (
	"errors"

	"github.com/labstack/echo/v4"
)

type CurrentUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func SetCurrentUser(c echo.Context, user CurrentUser) {
	c.Set("current_user", user)
}

func GetCurrentUser(c echo.Context) (CurrentUser, error) {
	u := c.Get("current_user")
	if u == nil {
		return CurrentUser{}, errors.New("user not authenticated")
	}

	currentUser, ok := u.(CurrentUser)
	if !ok {
		return CurrentUser{}, errors.New("invalid user context")
	}
	return currentUser, nil
}

// ClientKey identifies the caller for throttling: the authenticated e-mail
// when there is one, the client IP otherwise.
func ClientKey(c echo.Context) string {
	if u, err := GetCurrentUser(c); err == nil && u.Email != "" {
		return "user:" + u.Email
	}
	return "ip:" + c.RealIP()
}
