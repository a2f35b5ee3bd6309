package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"
)

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO settings (key, value) VALUES ($1, $2)
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	_, err := r.db.ExecContext(ctx, query, key, value)
	return err
}

type directoryRepository struct {
	db *sql.DB
}

func NewDirectoryRepository(db *sql.DB) repository.DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) GetContact(ctx context.Context, userID int32) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = $1`, userID).Scan(&c.UserID, &c.Name, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
