package spreadsheet

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure produced by the splitter pipeline.
// The HTTP layer maps kinds to status codes; it never inspects messages.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindEmptyInput
	KindUnknownLayout
	KindColumnCount
	KindColumnMismatch
	KindOversize
	KindDecode
	KindArchive
)

func (k ErrorKind) String() string {
	switch k {
	case KindEmptyInput:
		return "empty_input"
	case KindUnknownLayout:
		return "unknown_layout"
	case KindColumnCount:
		return "column_count_mismatch"
	case KindColumnMismatch:
		return "column_mismatch"
	case KindOversize:
		return "oversize_input"
	case KindDecode:
		return "decode"
	case KindArchive:
		return "archive"
	default:
		return "unexpected"
	}
}

type Error struct {
	Kind    ErrorKind
	Message string

	// Layout validation details. Position is 1-indexed.
	Layout   string
	Position int
	Expected string
	Actual   string

	// Column count details.
	ExpectedCount int
	ActualCount   int

	// Limit is the byte ceiling for oversize errors.
	Limit int64

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindUnexpected when err was not
// produced by this package.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func NewEmptyInputError() *Error {
	return &Error{
		Kind:    KindEmptyInput,
		Message: "a planilha está vazia ou contém apenas o cabeçalho",
	}
}

func NewUnknownLayoutError(layout string) *Error {
	return &Error{
		Kind:    KindUnknownLayout,
		Message: fmt.Sprintf("layout desconhecido: %q", layout),
		Layout:  layout,
	}
}

func NewColumnCountError(layout string, expected, actual int) *Error {
	return &Error{
		Kind: KindColumnCount,
		Message: fmt.Sprintf(
			"quantidade de colunas diferente do layout %s: esperado %d, encontrado %d",
			layout, expected, actual,
		),
		Layout:        layout,
		ExpectedCount: expected,
		ActualCount:   actual,
	}
}

// NewColumnMismatchError expects a 1-indexed position.
func NewColumnMismatchError(layout string, position int, expected, actual string) *Error {
	return &Error{
		Kind: KindColumnMismatch,
		Message: fmt.Sprintf(
			"coluna %d não corresponde ao layout %s: esperado %q, encontrado %q",
			position, layout, expected, actual,
		),
		Layout:   layout,
		Position: position,
		Expected: expected,
		Actual:   actual,
	}
}

func NewOversizeError(limit int64) *Error {
	return &Error{
		Kind:    KindOversize,
		Message: fmt.Sprintf("o arquivo excede o limite de %s", formatBytes(limit)),
		Limit:   limit,
	}
}

func NewDecodeError(err error) *Error {
	return &Error{
		Kind:    KindDecode,
		Message: "erro ao ler planilha",
		Err:     err,
	}
}

func NewArchiveError(err error) *Error {
	return &Error{
		Kind:    KindArchive,
		Message: "erro ao gerar arquivo ZIP",
		Err:     err,
	}
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/mb)
}
