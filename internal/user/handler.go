package user

import (
	"net/http"

	"github.com/freitasmatheusrn/olist-helper/pkg/rest"
	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetMe handles GET /api/me
func (h *Handler) GetMe(c echo.Context) error {
	currentUser, err := GetCurrentUser(c)
	if err != nil {
		return rest.NewUnauthorizedRequestError("usuário não autenticado")
	}

	return c.JSON(http.StatusOK, currentUser)
}
