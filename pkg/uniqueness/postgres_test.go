package uniqueness_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liveform/pkg/uniqueness"
)

type fakeRow struct {
	exists bool
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*bool) = r.exists
	return nil
}

type fakeQuerier struct {
	row  fakeRow
	sql  string
	args []any
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql = sql
	q.args = args
	return q.row
}

func TestPostgres(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	columns := map[string]uniqueness.Column{
		"email":    {Table: "accounts", Column: "email_key"},
		"username": {Table: "accounts", Column: "username_key"},
	}

	t.Run("looks up the normalized key", func(t *testing.T) {
		t.Parallel()
		q := &fakeQuerier{row: fakeRow{exists: true}}
		store, err := uniqueness.NewPostgres(q, columns)
		require.NoError(t, err)

		taken, err := store.Exists(ctx, "email", " Bob@example.com ")
		require.NoError(t, err)
		assert.True(t, taken)
		assert.Equal(t, `SELECT EXISTS (SELECT 1 FROM "accounts" WHERE "email_key" = $1)`, q.sql)
		assert.Equal(t, []any{"bob@example.com"}, q.args)
	})

	t.Run("normalizes like the other stores", func(t *testing.T) {
		t.Parallel()
		mem := uniqueness.NewMemory("username")
		require.NoError(t, mem.Add(ctx, "username", "straße"))

		for _, v := range []string{"STRASSE", "  Straße"} {
			q := &fakeQuerier{}
			store, err := uniqueness.NewPostgres(q, columns)
			require.NoError(t, err)
			_, err = store.Exists(ctx, "username", v)
			require.NoError(t, err)

			taken, err := mem.Exists(ctx, "username", v)
			require.NoError(t, err)
			assert.True(t, taken, v)
			assert.Equal(t, []any{uniqueness.Normalize("straße")}, q.args, v)
		}
	})

	t.Run("unknown field never reaches the database", func(t *testing.T) {
		t.Parallel()
		q := &fakeQuerier{}
		store, err := uniqueness.NewPostgres(q, columns)
		require.NoError(t, err)

		_, err = store.Exists(ctx, "phone", "1")
		assert.ErrorIs(t, err, uniqueness.ErrUnknownField)
		assert.Empty(t, q.sql)
	})

	t.Run("scan errors are wrapped", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection reset")
		store, err := uniqueness.NewPostgres(&fakeQuerier{row: fakeRow{err: boom}}, columns)
		require.NoError(t, err)

		_, err = store.Exists(ctx, "username", "bob")
		assert.ErrorIs(t, err, uniqueness.ErrStoreFailure)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("rejects incomplete configuration", func(t *testing.T) {
		t.Parallel()
		_, err := uniqueness.NewPostgres(&fakeQuerier{}, map[string]uniqueness.Column{"email": {Table: "accounts"}})
		assert.ErrorIs(t, err, uniqueness.ErrInvalidConfig)

		_, err = uniqueness.NewPostgres(nil, columns)
		assert.ErrorIs(t, err, uniqueness.ErrInvalidConfig)
	})
}
