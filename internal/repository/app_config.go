package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// AppConfigRepository — доступ к таблице app_config (динамическая
// конфигурация в JSONB, изменяемая без передеплоя).
type AppConfigRepository interface {
	// Get читает значение по ключу и десериализует его в dest.
	Get(ctx context.Context, key string, dest any) error
	// GetInt читает целочисленное значение по ключу.
	GetInt(ctx context.Context, key string) (int, error)
	// Set записывает значение (upsert).
	Set(ctx context.Context, key string, value any, description string) error
}

// appConfigRepo — реализация AppConfigRepository.
type appConfigRepo struct {
	db DBTX
}

// NewAppConfigRepository создаёт репозиторий динамической конфигурации.
func NewAppConfigRepository(db DBTX) AppConfigRepository {
	return &appConfigRepo{db: db}
}

func (r *appConfigRepo) Get(ctx context.Context, key string, dest any) error {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT config_value FROM app_config WHERE config_key = $1`, key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка чтения конфигурации %q: %w", key, err)
	}
	if raw == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("ошибка десериализации конфигурации %q: %w", key, err)
	}
	return nil
}

func (r *appConfigRepo) GetInt(ctx context.Context, key string) (int, error) {
	var v int
	if err := r.Get(ctx, key, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func (r *appConfigRepo) Set(ctx context.Context, key string, value any, description string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка сериализации конфигурации %q: %w", key, err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO app_config (config_key, config_value, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (config_key) DO UPDATE
		SET config_value = EXCLUDED.config_value,
			description = EXCLUDED.description`,
		key, raw, description,
	)
	if err != nil {
		return fmt.Errorf("ошибка записи конфигурации %q: %w", key, err)
	}
	return nil
}
