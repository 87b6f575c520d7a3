package parser

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// NewPgUUID returns a random v4 id ready to be bound to a UUID column.
func NewPgUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func PgUUIDToString(id pgtype.UUID) (string, error) {
	if !id.Valid {
		return "", errors.New("id inválido")
	}
	return uuid.UUID(id.Bytes).String(), nil
}

// PgText maps blank strings to NULL.
func PgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	return pgtype.Text{String: s, Valid: s != ""}
}
