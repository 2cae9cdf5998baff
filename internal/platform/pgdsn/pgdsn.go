// Package pgdsn reads and adjusts postgres connection strings in both the
// postgres:// URL form and lib/pq's key=value form.
package pgdsn

import (
	"net/url"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

const binaryParameters = "binary_parameters"

func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Settings returns the connection settings of dsn keyed by lib/pq names
// (host, port, dbname, user, sslmode, ...).
func Settings(dsn string) (map[string]string, error) {
	dsn = strings.TrimSpace(dsn)
	if isURL(dsn) {
		kv, err := pq.ParseURL(dsn)
		if err != nil {
			return nil, crerr.Wrap(err, "parse postgres url")
		}
		dsn = kv
	}
	return parseKeyValues(dsn)
}

// DatabaseName is the dbname setting of dsn, or "" when dsn is unreadable.
func DatabaseName(dsn string) string {
	settings, err := Settings(dsn)
	if err != nil {
		return ""
	}
	return settings["dbname"]
}

// Target describes where dsn points without its credentials, for logs.
func Target(dsn string) string {
	settings, err := Settings(dsn)
	if err != nil {
		return "unparseable dsn"
	}
	host := settings["host"]
	if host == "" {
		host = "localhost"
	}
	if port := settings["port"]; port != "" {
		host += ":" + port
	}
	return host + "/" + settings["dbname"]
}

// WithBinaryParameters turns on lib/pq's binary_parameters unless dsn
// already sets it either way.
func WithBinaryParameters(dsn string) string {
	trimmed := strings.TrimSpace(dsn)
	if isURL(trimmed) {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return dsn
		}
		query := parsed.Query()
		if query.Has(binaryParameters) {
			return dsn
		}
		query.Set(binaryParameters, "yes")
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	settings, err := parseKeyValues(trimmed)
	if err != nil {
		return dsn
	}
	if _, ok := settings[binaryParameters]; ok {
		return dsn
	}
	if trimmed == "" {
		return binaryParameters + "=yes"
	}
	return trimmed + " " + binaryParameters + "=yes"
}

// parseKeyValues reads "key=value key='quoted \' value'" settings.
func parseKeyValues(s string) (map[string]string, error) {
	out := make(map[string]string)
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" {
			return out, nil
		}

		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			return nil, crerr.Newf("malformed setting %q", s)
		}
		key := strings.TrimSpace(s[:eq])
		if key == "" || strings.ContainsAny(key, " \t\r\n") {
			return nil, crerr.Newf("malformed setting key %q", s[:eq])
		}
		s = strings.TrimLeft(s[eq+1:], " \t")

		if !strings.HasPrefix(s, "'") {
			end := strings.IndexAny(s, " \t\r\n")
			if end < 0 {
				end = len(s)
			}
			out[key] = s[:end]
			s = s[end:]
			continue
		}

		var value strings.Builder
		i := 1
		for ; i < len(s) && s[i] != '\''; i++ {
			if s[i] == '\\' && i+1 < len(s) {
				i++
			}
			value.WriteByte(s[i])
		}
		if i >= len(s) {
			return nil, crerr.Newf("unterminated quoted value for %q", key)
		}
		out[key] = value.String()
		s = s[i+1:]
	}
}
