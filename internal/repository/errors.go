package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches the lookup
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate key value")

	// ErrEmailTaken is the duplicate raised by users_email_key
	ErrEmailTaken = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrDisplayNameTaken is the duplicate raised by users_display_name_key
	ErrDisplayNameTaken = fmt.Errorf("%w: display name", ErrDuplicate)

	// ErrForeignKey is returned when a referenced row does not exist
	ErrForeignKey = errors.New("foreign key violation")
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRep      = "22P02"
)

// IsUniqueViolation reports whether err is a postgres unique_violation
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// isInvalidID reports whether postgres rejected a malformed uuid. Such an
// id cannot match any row.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeInvalidTextRep
}

// listError treats a malformed id filter as matching nothing, so callers
// return an empty result when it yields nil
func listError(op string, err error) error {
	if isInvalidID(err) {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// writeError classifies constraint violations and wraps everything else
func writeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			switch pgErr.ConstraintName {
			case "users_email_key":
				return ErrEmailTaken
			case "users_display_name_key":
				return ErrDisplayNameTaken
			}
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrForeignKey, pgErr.ConstraintName)
		case codeInvalidTextRep:
			return ErrNotFound
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// readError maps pgx.ErrNoRows and malformed ids to ErrNotFound and wraps
// everything else
func readError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
