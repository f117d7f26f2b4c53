package database

import (
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// NewMockPool returns a pgxmock pool for repository tests. It satisfies DBTX,
// so it drops into any repository constructor in place of a real pool; finish
// each test with ExpectationsWereMet() to catch unmatched queries.
func NewMockPool() (pgxmock.PgxPoolIface, error) {
	return pgxmock.NewPool()
}
