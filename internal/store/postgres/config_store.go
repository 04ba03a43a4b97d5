package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/types"
)

var _ store.ConfigStore = (*ConfigStore)(nil)

// ConfigStore implements store.ConfigStore on PostgreSQL.
type ConfigStore struct {
	db DB
}

func NewConfigStore(db DB) *ConfigStore {
	return &ConfigStore{db: db}
}

func (s *ConfigStore) ListActionConfigs(ctx context.Context) ([]types.ActionConfig, error) {
	rows, err := s.db.Query(ctx, `
		SELECT key, label, weight, is_negative, built_in, sort_order, updated_at
		FROM action_configs
		ORDER BY sort_order, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list action configs: %w", err)
	}
	defer rows.Close()

	var out []types.ActionConfig
	for rows.Next() {
		var c types.ActionConfig
		if err := rows.Scan(&c.Key, &c.Label, &c.Weight, &c.IsNegative, &c.BuiltIn, &c.SortOrder, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action config: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const upsertActionConfig = `
	INSERT INTO action_configs (key, label, weight, is_negative, built_in, sort_order, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	ON CONFLICT (key) DO UPDATE
	SET label = EXCLUDED.label,
		weight = EXCLUDED.weight,
		is_negative = EXCLUDED.is_negative,
		sort_order = EXCLUDED.sort_order,
		updated_at = NOW()`

const insertActionConfig = `
	INSERT INTO action_configs (key, label, weight, is_negative, built_in, sort_order, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	ON CONFLICT (key) DO NOTHING`

// UpsertActionConfig writes one action. built_in is fixed at first insert.
func (s *ConfigStore) UpsertActionConfig(ctx context.Context, cfg types.ActionConfig) error {
	_, err := s.db.Exec(ctx, upsertActionConfig,
		cfg.Key, cfg.Label, cfg.Weight, cfg.IsNegative, cfg.BuiltIn, cfg.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to upsert action config %s: %w", cfg.Key, err)
	}
	return nil
}

func (s *ConfigStore) SeedActionConfigs(ctx context.Context, cfgs []types.ActionConfig, overwrite bool) (int64, error) {
	query := insertActionConfig
	if overwrite {
		query = upsertActionConfig
	}

	var written int64
	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		for _, cfg := range cfgs {
			tag, err := tx.Exec(ctx, query,
				cfg.Key, cfg.Label, cfg.Weight, cfg.IsNegative, cfg.BuiltIn, cfg.SortOrder)
			if err != nil {
				return fmt.Errorf("failed to seed action config %s: %w", cfg.Key, err)
			}
			written += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (s *ConfigStore) GetConfig(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM configs WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return nil, notFound(err)
	}
	return json.RawMessage(value), nil
}

func (s *ConfigStore) PutConfig(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO configs (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to save config %s: %w", key, err)
	}
	return nil
}
