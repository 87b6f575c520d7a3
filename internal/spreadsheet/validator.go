package spreadsheet

// ValidateLayout checks header against the registered layout, position by
// position. Comparison is exact: case and accents matter.
func ValidateLayout(header Row, layout string) error {
	expected, ok := ExpectedLayout(layout)
	if !ok {
		return NewUnknownLayoutError(layout)
	}

	if len(header) != len(expected) {
		return NewColumnCountError(layout, len(expected), len(header))
	}

	for i, want := range expected {
		if got := header[i].Value; got != want {
			return NewColumnMismatchError(layout, i+1, want, got)
		}
	}

	return nil
}
