package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(50) PRIMARY KEY,
	nickname VARCHAR(100) NOT NULL,
	score INT NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect score db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping score db: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Migrate creates the users table if it does not exist yet.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (p *Postgres) UpsertScore(ctx context.Context, playerID, nickname string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, nickname, score) VALUES ($1, $2, 0)
		 ON CONFLICT (id) DO NOTHING`,
		playerID, nickname)
	return err
}

func (p *Postgres) UpdateScore(ctx context.Context, playerID string, score int) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE users SET score = $2 WHERE id = $1`,
		playerID, score)
	return err
}

func (p *Postgres) Close() {
	p.pool.Close()
}
