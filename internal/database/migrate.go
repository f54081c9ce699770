package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chat-api/internal/objectid"
)

//go:embed migrations/001_initial.up.sql
var initialMigrationSQL string

var requiredTables = []string{
	"users",
	"roles",
	"user_roles",
	"endpoints",
}

func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasAllRequiredTables(ctx)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("database schema missing tables; applying initial migration")
		if _, err := db.Pool.Exec(ctx, initialMigrationSQL); err != nil {
			return fmt.Errorf("apply initial migration: %w", err)
		}

		exists, err = db.hasAllRequiredTables(ctx)
		if err != nil {
			return fmt.Errorf("re-check tables after migration: %w", err)
		}

		if !exists {
			return fmt.Errorf("schema initialization incomplete: required tables are still missing")
		}
	}

	slog.Info("database schema ensured")
	return nil
}

// SeedAdmin creates the bootstrap admin account when the users table is
// empty, so a fresh deployment can log in and register endpoint policies.
func (db *DB) SeedAdmin(ctx context.Context, password string) error {
	var count int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return fmt.Errorf("hash seed admin password: %w", err)
	}

	id := objectid.New()
	now := time.Now().UTC()
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, email, username, password_hash, created_at, updated_at)
		 VALUES ($1, 'System', 'Admin', 'admin@chat-api.local', 'admin', $2, $3, $3)`,
		id, string(hash), now)
	if err != nil {
		return fmt.Errorf("insert seed admin: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT $1, id FROM roles WHERE normalized_name = 'ADMIN'`, id)
	if err != nil {
		return fmt.Errorf("link seed admin role: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}

func (db *DB) hasAllRequiredTables(ctx context.Context) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name = ANY($1)
	`, requiredTables).Scan(&count)
	if err != nil {
		return false, err
	}

	return count == len(requiredTables), nil
}
