package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

var (
	ErrNotFound        = errors.New("not found")        // 404
	ErrConflict        = errors.New("conflict")         // 409
	ErrOutOfStock      = errors.New("out of stock")     // 409
	ErrInvalidArgument = errors.New("invalid argument") // 400
	ErrValidation      = errors.New("validation")       // 400
	ErrUnauthenticated = errors.New("unauthenticated")  // 401
	ErrUnauthorized    = errors.New("unauthorized")     // 403
)

// ValidationError carries every failed field at once.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// orNotFound maps a missing row to ErrNotFound with the given message and
// passes every other error through.
func orNotFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

func orConflict(err error, format string, args ...any) error {
	if pkgdb.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
	}
	return err
}
