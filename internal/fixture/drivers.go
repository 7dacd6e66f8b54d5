package fixture

import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names registered by this package.
const (
	DriverSQLite3  = "sqlite3"  // mattn/go-sqlite3 (cgo)
	DriverSQLite   = "sqlite"   // modernc.org/sqlite (pure Go)
	DriverPostgres = "postgres" // lib/pq
	DriverMySQL    = "mysql"    // go-sql-driver/mysql
)

// DefaultDriver is used when no driver is configured.
const DefaultDriver = DriverSQLite3

// isSQLite reports whether the driver speaks the SQLite dialect.
func isSQLite(driver string) bool {
	return driver == DriverSQLite3 || driver == DriverSQLite
}
