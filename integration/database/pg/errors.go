package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrFailedToOpenDBConnection is returned when the connection pool cannot be established.
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	// ErrEmptyConnectionString is returned when no connection string is configured.
	ErrEmptyConnectionString = errors.New("empty postgres connection string, use PG_CONN_URL env var")
	// ErrHealthcheckFailed is returned when the connection is not available.
	ErrHealthcheckFailed = errors.New("healthcheck failed, connection is not available")
	// ErrFailedToParseDBConfig is returned when the connection string cannot be parsed.
	ErrFailedToParseDBConfig = errors.New("failed to parse db config")
	// ErrFailedToApplyMigrations is returned when goose fails to apply migrations.
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
)

// IsNotFoundError reports whether err is a no-rows result.
func IsNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports whether err is a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolationError reports whether err is a referential integrity violation.
func IsForeignKeyViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// IsTxClosedError reports whether err indicates usage of a finished transaction.
func IsTxClosedError(err error) bool {
	return errors.Is(err, pgx.ErrTxClosed)
}
