// Package repository is the persistent store access layer. Every
// multi-step mutation (write + audit entry, capacity check + insert)
// runs inside a single transaction so a failure at any step leaves no
// partial state.
package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNoRowsAffected signals that an update targeted a missing row.
var ErrNoRowsAffected = errors.New("no rows affected")

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
