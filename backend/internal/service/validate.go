package service

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/postboard-dev/postboard/shared/errors"
)

const (
	titleMaxLen        = 100
	commentMaxLen      = 500
	categoryNameMaxLen = 50
)

// ValidateId rejects ids that are not UUIDs before they reach storage.
func ValidateId(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.BadRequest("Invalid " + what + " id")
	}
	return nil
}

// checkText trims s and enforces 1..maxLen runes. maxLen 0 means unbounded.
func checkText(s string, maxLen int, field string, fields map[string]string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		fields[field] = "required"
	case maxLen > 0 && utf8.RuneCountInString(s) > maxLen:
		fields[field] = "max"
	}
	return s
}

func validationResult(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return errors.Validation("Validation failed", fields)
}
