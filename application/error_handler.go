package application

import (
	"errors"
	"net/http"

	"github.com/freitasmatheusrn/olist-helper/internal/spreadsheet"
	"github.com/freitasmatheusrn/olist-helper/pkg/rest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// httpMessages translates the errors echo raises by itself.
var httpMessages = map[int]string{
	http.StatusNotFound:         "rota nao encontrada",
	http.StatusMethodNotAllowed: "metodo nao permitido",
	http.StatusUnauthorized:     "usuario nao autenticado",
	http.StatusBadRequest:       "requisicao invalida",
}

func (a *Application) CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	apiErr := a.toApiErr(err)

	var sendErr error
	if c.Request().Method == http.MethodHead {
		sendErr = c.NoContent(apiErr.Code)
	} else {
		sendErr = c.JSON(apiErr.Code, apiErr)
	}
	if sendErr != nil {
		a.Logger.Error("failed to send error response", zap.Error(sendErr))
	}
}

func (a *Application) toApiErr(err error) *rest.ApiErr {
	var apiErr *rest.ApiErr
	if errors.As(err, &apiErr) {
		if apiErr.Code >= http.StatusInternalServerError {
			a.Logger.Error("request failed",
				zap.Int("code", apiErr.Code),
				zap.String("message", apiErr.Message),
			)
		}
		return apiErr
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusRequestEntityTooLarge {
			return rest.NewApiErr(spreadsheet.NewOversizeError(a.maxUploadBytes()).Message, he.Code, nil)
		}
		message, ok := httpMessages[he.Code]
		if !ok {
			if msg, isString := he.Message.(string); isString {
				message = msg
			} else {
				message = http.StatusText(he.Code)
			}
		}
		return rest.NewApiErr(message, he.Code, nil)
	}

	a.Logger.Error("unhandled error", zap.Error(err))
	return rest.NewInternalServerError("Erro interno do servidor")
}
