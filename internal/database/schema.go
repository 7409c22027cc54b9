package database

import (
	_ "embed"
	"strings"
)

var (
	//go:embed schema/sqlite.sql
	sqliteSchema string

	//go:embed schema/postgres.sql
	postgresSchema string
)

// statements splits a schema file into single statements. The schema files
// contain no semicolons inside literals.
func statements(schema string) []string {
	var out []string
	for _, s := range strings.Split(schema, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
