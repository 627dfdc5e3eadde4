package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage"
)

// AccountStore is a Postgres-backed implementation of the account store.
// Rooms stay in the ephemeral room store; only identities are durable.
type AccountStore struct {
	pool *pgxpool.Pool
}

// Ensure AccountStore implements the interface
var _ storage.AccountStore = (*AccountStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	avatar     TEXT NOT NULL DEFAULT '',
	is_guest   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS registered_users (
	user_id       TEXT PRIMARY KEY REFERENCES users (id),
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	avatar        TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
`

// New connects to Postgres and ensures the account schema exists
func New(ctx context.Context, dsn string) (*AccountStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &AccountStore{pool: pool}, nil
}

// Close releases the connection pool
func (s *AccountStore) Close() {
	s.pool.Close()
}

func (s *AccountStore) SaveUser(ctx context.Context, user *model.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, avatar, is_guest, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    avatar   = EXCLUDED.avatar
	`, string(user.ID), user.Username, user.Avatar, user.IsGuest, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *AccountStore) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var user model.User
	var idStr string

	err := s.pool.QueryRow(ctx, `
		SELECT id, username, avatar, is_guest, created_at
		FROM users
		WHERE id = $1
	`, string(id)).Scan(&idStr, &user.Username, &user.Avatar, &user.IsGuest, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.ID = model.UserID(idStr)
	return &user, nil
}

func (s *AccountStore) DeleteUser(ctx context.Context, id model.UserID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *AccountStore) SaveRegisteredUser(ctx context.Context, ru *model.RegisteredUser) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO registered_users (user_id, username, password_hash, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    avatar        = EXCLUDED.avatar,
		    updated_at    = EXCLUDED.updated_at
	`, string(ru.UserID), ru.Username, ru.PasswordHash, ru.Avatar, ru.CreatedAt, ru.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save registered user: %w", err)
	}
	return nil
}

func (s *AccountStore) GetRegisteredUser(ctx context.Context, userID model.UserID) (*model.RegisteredUser, error) {
	return s.getRegisteredUser(ctx, `WHERE user_id = $1`, string(userID))
}

func (s *AccountStore) GetRegisteredUserByUsername(ctx context.Context, username string) (*model.RegisteredUser, error) {
	return s.getRegisteredUser(ctx, `WHERE username = $1`, username)
}

func (s *AccountStore) getRegisteredUser(ctx context.Context, where string, arg any) (*model.RegisteredUser, error) {
	var ru model.RegisteredUser
	var idStr string

	err := s.pool.QueryRow(ctx, `
		SELECT user_id, username, password_hash, avatar, created_at, updated_at
		FROM registered_users
	`+where, arg).Scan(&idStr, &ru.Username, &ru.PasswordHash, &ru.Avatar, &ru.CreatedAt, &ru.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get registered user: %w", err)
	}

	ru.UserID = model.UserID(idStr)
	return &ru, nil
}
