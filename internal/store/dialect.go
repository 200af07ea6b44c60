package store

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect captures the differences between the SQLite and Postgres backends.
type Dialect interface {
	// Name returns the backend name (BackendSQLite or BackendPostgres).
	Name() string

	// Rebind rewrites "?" placeholders into the backend's native form.
	Rebind(query string) string

	// ListValue encodes a string list for a list-valued column.
	ListValue(list []string) (driver.Value, error)

	// ListScanner returns a scan destination that decodes a list-valued
	// column into dst.
	ListScanner(dst *[]string) sql.Scanner

	// IsUniqueViolation reports whether err is a primary key or unique
	// constraint violation.
	IsUniqueViolation(err error) bool
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return BackendSQLite }

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) ListValue(list []string) (driver.Value, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("marshal list: %w", err)
	}
	return string(data), nil
}

func (sqliteDialect) ListScanner(dst *[]string) sql.Scanner {
	return &jsonList{dst: dst}
}

func (sqliteDialect) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return BackendPostgres }

// Rebind replaces each "?" outside single-quoted literals with $1, $2, ...
func (postgresDialect) Rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (postgresDialect) ListValue(list []string) (driver.Value, error) {
	if list == nil {
		list = []string{}
	}
	return pq.Array(list).Value()
}

func (postgresDialect) ListScanner(dst *[]string) sql.Scanner {
	return pq.Array(dst)
}

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505"
}

// jsonList scans a JSON array stored as TEXT.
type jsonList struct {
	dst *[]string
}

func (l *jsonList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l.dst = []string{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("scan list: unsupported source type %T", src)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("scan list: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	*l.dst = list
	return nil
}
