package db

import "strings"

// IsUniqueViolation reports whether the provided error references a SQLite
// unique constraint failure. When columnRef is provided (table.column), the
// helper looks for that reference in the error message.
func IsUniqueViolation(err error, columnRef string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if columnRef == "" {
		return true
	}
	return strings.Contains(msg, columnRef)
}
