package rest

import "net/http"

// ApiErr is the error payload returned by every JSON endpoint.
// Message is always a human-readable Portuguese text.
type ApiErr struct {
	Message string   `json:"error"`
	Err     string   `json:"status"`
	Code    int      `json:"code"`
	Causes  []Causes `json:"causes,omitempty"`
}

type Causes struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (r *ApiErr) Error() string {
	return r.Message
}

func NewApiErr(message string, code int, causes []Causes) *ApiErr {
	return &ApiErr{
		Message: message,
		Err:     http.StatusText(code),
		Code:    code,
		Causes:  causes,
	}
}

func NewBadRequestError(message string) *ApiErr {
	return NewApiErr(message, http.StatusBadRequest, nil)
}

func NewBadRequestValidationError(message string, causes []Causes) *ApiErr {
	return NewApiErr(message, http.StatusBadRequest, causes)
}

func NewUnauthorizedRequestError(message string) *ApiErr {
	return NewApiErr(message, http.StatusUnauthorized, nil)
}

func NewNotFoundError(message string) *ApiErr {
	return NewApiErr(message, http.StatusNotFound, nil)
}

func NewMethodNotAllowedError(message string) *ApiErr {
	return NewApiErr(message, http.StatusMethodNotAllowed, nil)
}

func NewRequestEntityTooLargeError(message string) *ApiErr {
	return NewApiErr(message, http.StatusRequestEntityTooLarge, nil)
}

func NewUnprocessableEntity(message string) *ApiErr {
	return NewApiErr(message, http.StatusUnprocessableEntity, nil)
}

func NewTooManyRequestsError(message string) *ApiErr {
	return NewApiErr(message, http.StatusTooManyRequests, nil)
}

func NewInternalServerError(message string) *ApiErr {
	return NewApiErr(message, http.StatusInternalServerError, nil)
}
