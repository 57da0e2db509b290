package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sjf12/AACL/internal/core/domain"
)

// ConnectDB initializes a small connection pool used to seed accounts
func ConnectDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	// 1. Parse Config
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	// 2. The pool only lives for the startup read
	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute

	// 3. Connect
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// 4. Test Connection (Ping)
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	return pool, nil
}

// Querier is the subset of pgxpool.Pool the seed loader needs
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LoadAccountsFromDB reads the account seed once. Balances are selected as
// text so numeric columns keep their exact decimal value.
func LoadAccountsFromDB(ctx context.Context, db Querier) ([]domain.Account, error) {
	query := `SELECT id, display_name, balance::text FROM accounts ORDER BY id`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var id, name, rawBalance string
		if err := rows.Scan(&id, &name, &rawBalance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		balance, err := domain.ParseMoney(rawBalance)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", id, err)
		}
		accounts = append(accounts, domain.Account{ID: id, DisplayName: name, Balance: balance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}
