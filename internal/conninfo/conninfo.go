// Package conninfo assembles libpq key/value connection strings from
// discrete command-line parameters.
package conninfo

import (
	"regexp"
	"strings"
)

var findSpace = regexp.MustCompile(`\s`)

// Quote prepares a single conninfo value. Values without whitespace are
// emitted verbatim; the rest are single-quoted with embedded backslashes
// and single quotes escaped. An empty value becomes ''.
func Quote(value string) string {
	if value == "" {
		return "''"
	}
	if !findSpace.MatchString(value) {
		return value
	}
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return "'" + escaped + "'"
}

// Build produces the connection string for the direct-database mode.
//
// A dbname that is empty or contains "=" is already a full conninfo string
// and is returned unchanged, ignoring host, port and user. The empty case
// deliberately means "delegate everything to libpq defaults": it is treated
// as a literal (empty) conninfo, not as a missing database name.
func Build(host, port, user, dbname string) string {
	if dbname == "" || strings.Contains(dbname, "=") {
		return dbname
	}

	var parts []string
	if host != "" {
		parts = append(parts, "host="+Quote(host))
	}
	if port != "" {
		parts = append(parts, "port="+Quote(port))
	}
	if user != "" {
		parts = append(parts, "user="+Quote(user))
	}
	parts = append(parts, "dbname="+Quote(dbname))

	return strings.Join(parts, " ")
}
