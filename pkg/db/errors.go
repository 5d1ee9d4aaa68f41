package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation from
// postgres (pgx or lib/pq) or sqlite. When targets are given, the violation
// must name one of them: a postgres constraint name, or for sqlite a
// "table.column" reference from the driver message.
func IsUniqueViolation(err error, targets ...string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgUniqueViolation && matchesTarget(pgxErr.ConstraintName, targets)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation && matchesTarget(pqErr.Constraint, targets)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if len(targets) == 0 {
		return true
	}
	for _, target := range targets {
		if target != "" && strings.Contains(msg, target) {
			return true
		}
	}
	return false
}

func matchesTarget(name string, targets []string) bool {
	if len(targets) == 0 {
		return true
	}
	for _, target := range targets {
		if target == name {
			return true
		}
	}
	return false
}
