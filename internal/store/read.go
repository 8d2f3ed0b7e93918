package store

import (
	"context"
	"fmt"
)

// SelectIDs runs a rendered query whose first column is a primary key and
// returns the keys as text, in result order.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) SelectIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id any
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		switch v := id.(type) {
		case []byte:
			ids = append(ids, string(v))
		default:
			ids = append(ids, fmt.Sprint(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
