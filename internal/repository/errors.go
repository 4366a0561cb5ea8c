package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Repositories map
// pgx.ErrNoRows to this so callers never depend on the driver.
var ErrNotFound = errors.New("not found")
