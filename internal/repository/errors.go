package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Sentinel errors shared by every storage implementation.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateEmployeeID = errors.New("employee id already registered")
	ErrDuplicateProviderID = errors.New("external identity already linked")
	ErrStatusConflict      = errors.New("record is not in an expected status")
)

const pgUniqueViolation = "23505"

// uniqueViolation maps a unique index name or column reference onto a sentinel.
func uniqueViolation(ref string) error {
	ref = strings.ToLower(ref)
	switch {
	case strings.Contains(ref, "email"):
		return ErrDuplicateEmail
	case strings.Contains(ref, "employee_id"):
		return ErrDuplicateEmployeeID
	case strings.Contains(ref, "google_id"), strings.Contains(ref, "github_id"):
		return ErrDuplicateProviderID
	}
	return nil
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if mapped := uniqueViolation(pgErr.ConstraintName); mapped != nil {
			return mapped
		}
	}
	return err
}

func mapGormError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	// sqlite reports "UNIQUE constraint failed: users.email"
	if msg := err.Error(); strings.Contains(msg, "UNIQUE constraint failed") {
		if mapped := uniqueViolation(msg); mapped != nil {
			return mapped
		}
	}
	return err
}

// validID reports whether id can address a stored record.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
