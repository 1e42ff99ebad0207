// internal/source/sql.go
//
// Key/value provider backed by a settings table.
//
// Context
// -------
// Operators can keep per-environment overrides in a small table instead of
// a file:
//
//	settings (`key` VARCHAR PK, value TEXT)
//
// One SELECT runs per merge.  Under the snapshot policy that means one
// query per access, so keep the table small.
//
// Notes
// -----
//   - The table name is configuration, not user input, but it is still
//     checked against a conservative identifier pattern before use.
package source

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type sqlSource struct {
	db    *sqlx.DB
	table string
}

// SQL returns a provider that reads every row of table as key/value.
func SQL(db *sqlx.DB, table string) Provider {
	return &sqlSource{db: db, table: table}
}

func (s *sqlSource) Name() string { return "sql:" + s.table }

func (s *sqlSource) ReadAll(ctx context.Context) (map[string]string, error) {
	if !identRe.MatchString(s.table) {
		return nil, Unavailable(s.Name(), fmt.Errorf("invalid table name %q", s.table))
	}
	q := "SELECT `key`, value FROM " + s.table

	rows := make([]struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}, 0, 8)

	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, Unavailable(s.Name(), err)
	}

	kv := make(map[string]string, len(rows))
	for _, r := range rows {
		kv[r.Key] = r.Value
	}
	return kv, nil
}
