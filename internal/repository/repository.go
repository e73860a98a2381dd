package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound hides the driver's sentinel from callers; services and
// handlers match on this instead of pgx internals.
var ErrNotFound = errors.New("record not found")

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
