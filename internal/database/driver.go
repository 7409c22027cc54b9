// Package database opens the storage backends and applies their schema.
package database

import "strings"

// Driver represents a storage backend type.
type Driver string

const (
	// DriverMemory keeps tasks in process memory only.
	DriverMemory Driver = "memory"
	// DriverJSON keeps tasks in a JSON file.
	DriverJSON Driver = "json"
	// DriverSQLite represents SQLite database.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres represents PostgreSQL database.
	DriverPostgres Driver = "postgres"
)

// String returns the string representation of the driver.
func (d Driver) String() string {
	return string(d)
}

// DetectDriver parses a connection string and returns the driver type.
// Anything that is not recognised is treated as a SQLite file path.
func DetectDriver(url string) Driver {
	switch {
	case url == "memory":
		return DriverMemory
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasSuffix(url, ".json"):
		return DriverJSON
	default:
		return DriverSQLite
	}
}

// SQLitePath strips the sqlite:// scheme, leaving a path or file: URI.
func SQLitePath(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}
