package uniqueness

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx the Postgres store needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Column locates the stored values of a field. The column must hold values
// already passed through Normalize, so lookups agree with the other stores.
type Column struct {
	Table  string
	Column string
}

// Postgres answers uniqueness lookups against existing tables by comparing the
// normalized value with a normalized key column.
type Postgres struct {
	db      Querier
	queries map[string]string
}

var _ Store = (*Postgres)(nil)

// NewPostgres maps field ids to the columns holding their values.
func NewPostgres(db Querier, columns map[string]Column) (*Postgres, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: nil querier", ErrInvalidConfig)
	}
	queries := make(map[string]string, len(columns))
	for field, c := range columns {
		if c.Table == "" || c.Column == "" {
			return nil, fmt.Errorf("%w: incomplete column for %q", ErrInvalidConfig, field)
		}
		queries[field] = fmt.Sprintf(
			"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)",
			pgx.Identifier{c.Table}.Sanitize(),
			pgx.Identifier{c.Column}.Sanitize(),
		)
	}
	return &Postgres{db: db, queries: queries}, nil
}

func (p *Postgres) Exists(ctx context.Context, field, value string) (bool, error) {
	q, ok := p.queries[field]
	if !ok {
		return false, ErrUnknownField
	}

	var exists bool
	if err := p.db.QueryRow(ctx, q, Normalize(value)).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return exists, nil
}
