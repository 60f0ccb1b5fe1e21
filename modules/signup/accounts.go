package signup

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/liveform/pkg/pg"
	"github.com/dmitrymomot/liveform/pkg/uniqueness"
)

// Account is a registered user.
type Account struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// AccountStore persists new accounts. Create returns ErrAccountExists when the
// username or email is taken.
type AccountStore interface {
	Create(ctx context.Context, a Account) error
}

// MemoryAccounts keeps accounts in process.
type MemoryAccounts struct {
	mu       sync.Mutex
	accounts []Account
	taken    map[string]struct{}
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{taken: make(map[string]struct{})}
}

func (m *MemoryAccounts) Create(_ context.Context, a Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, mail := "u:"+uniqueness.Normalize(a.Username), "e:"+uniqueness.Normalize(a.Email)
	_, userTaken := m.taken[user]
	_, mailTaken := m.taken[mail]
	if userTaken || mailTaken {
		return ErrAccountExists
	}
	m.taken[user] = struct{}{}
	m.taken[mail] = struct{}{}
	m.accounts = append(m.accounts, a)
	return nil
}

// All returns a copy of the stored accounts.
func (m *MemoryAccounts) All() []Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Account(nil), m.accounts...)
}

// Execer is the subset of pgxpool.Pool used to insert accounts.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresAccounts stores accounts in the accounts table created by the
// embedded migrations.
type PostgresAccounts struct {
	db Execer
}

func NewPostgresAccounts(db Execer) *PostgresAccounts {
	return &PostgresAccounts{db: db}
}

const insertAccount = `INSERT INTO accounts (id, username, email, username_key, email_key, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Create stores the account with normalized username and email keys, which the
// unique indexes and the uniqueness lookups compare.
func (p *PostgresAccounts) Create(ctx context.Context, a Account) error {
	_, err := p.db.Exec(ctx, insertAccount,
		a.ID, a.Username, a.Email,
		uniqueness.Normalize(a.Username), uniqueness.Normalize(a.Email),
		a.PasswordHash, a.CreatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return ErrAccountExists
	}
	return err
}
