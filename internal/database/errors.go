package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freitasmatheusrn/olist-helper/pkg/rest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errorMap = map[string]string{
	//UniqueViolation
	"23505": "já está em uso",
	//NotNullViolation
	"23502": "não pode ser nulo",
}

const (
	undefinedTable     = "42P01"
	connectionFailure  = "08006"
	connectionRejected = "08004"
)

func GetError(err *pgconn.PgError, constraint string) *rest.ApiErr {
	var columnName string
	parts := strings.Split(constraint, "_")
	if len(parts) >= 3 {
		columnName = parts[1]
	}
	if message, ok := errorMap[err.Code]; ok {
		fmtMsg := fmt.Sprintf("%s %s", columnName, message)
		cause := rest.Causes{
			Field:   columnName,
			Message: fmtMsg,
		}
		return rest.NewBadRequestValidationError(fmtMsg, []rest.Causes{cause})
	}
	switch err.Code {
	case undefinedTable:
		return rest.NewInternalServerError("tabela nao encontrada, execute a migracao")
	case connectionFailure, connectionRejected:
		return rest.NewInternalServerError("banco de dados indisponivel")
	}
	return rest.NewInternalServerError("erro ao acessar dados")
}

// ToApiErr converts any error returned by pgx into an ApiErr.
func ToApiErr(err error, fallback string) *rest.ApiErr {
	if errors.Is(err, pgx.ErrNoRows) {
		return rest.NewNotFoundError("recurso nao encontrado")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return GetError(pgErr, pgErr.ConstraintName)
	}
	return rest.NewInternalServerError(fallback)
}
