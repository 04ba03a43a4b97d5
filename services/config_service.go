package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/internal/aggregation"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"go.uber.org/zap"
)

var (
	actionKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,39}$`)
	configKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]{0,63}$`)
)

var builtInLabels = map[types.EventType]string{
	types.EventTypeGoal:    "Goal",
	types.EventTypeAssist:  "Assist",
	types.EventTypeYellow:  "Yellow card",
	types.EventTypeRed:     "Red card",
	types.EventTypeFoul:    "Foul",
	types.EventTypeSaveGK:  "Goalkeeper save",
	types.EventTypeTackle:  "Tackle",
	types.EventTypeDribble: "Dribble",
	types.EventTypeNote:    "Note",
}

// DefaultActionConfigs returns the built-in scoring rows in display order.
func DefaultActionConfigs() []types.ActionConfig {
	weights := aggregation.DefaultWeights()
	out := make([]types.ActionConfig, 0, len(types.BuiltInEventTypes))
	for i, t := range types.BuiltInEventTypes {
		out = append(out, types.ActionConfig{
			Key:        string(t),
			Label:      builtInLabels[t],
			Weight:     weights.Weights[t],
			IsNegative: t.IsPenalty(),
			BuiltIn:    true,
			SortOrder:  (i + 1) * 10,
		})
	}
	return out
}

type ConfigService struct {
	configs store.ConfigStore
	log     *zap.SugaredLogger
}

func NewConfigService(configs store.ConfigStore) *ConfigService {
	return &ConfigService{
		configs: configs,
		log:     logger.GetLogger().Named("configs"),
	}
}

// ListActionConfigs returns the stored scoring table. Built-ins that were
// never seeded are filled in with their defaults.
func (s *ConfigService) ListActionConfigs(ctx context.Context) ([]types.ActionConfig, error) {
	stored, err := s.configs.ListActionConfigs(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	seen := make(map[string]bool, len(stored))
	for _, c := range stored {
		seen[c.Key] = true
	}
	out := make([]types.ActionConfig, 0, len(stored)+len(types.BuiltInEventTypes))
	for _, d := range DefaultActionConfigs() {
		if !seen[d.Key] {
			out = append(out, d)
		}
	}
	return append(out, stored...), nil
}

func (s *ConfigService) UpsertActionConfig(ctx context.Context, key string, req types.ActionConfigUpdate) (*types.ActionConfig, error) {
	cfg, err := normalizeActionConfig(types.ActionConfig{
		Key:        key,
		Label:      req.Label,
		Weight:     req.Weight,
		IsNegative: req.IsNegative,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		return nil, err
	}
	if err := s.configs.UpsertActionConfig(ctx, cfg); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	s.log.Infow("Action config saved", "key", cfg.Key, "weight", cfg.Weight, "builtIn", cfg.BuiltIn)
	return &cfg, nil
}

// SeedActionConfigs writes the built-ins followed by extra custom actions.
// Existing keys are left alone unless overwrite is set.
func (s *ConfigService) SeedActionConfigs(ctx context.Context, extra []types.ActionConfig, overwrite bool) (int64, error) {
	rows := DefaultActionConfigs()
	seen := make(map[string]bool, len(rows)+len(extra))
	for _, r := range rows {
		seen[r.Key] = true
	}
	for _, e := range extra {
		cfg, err := normalizeActionConfig(e)
		if err != nil {
			return 0, err
		}
		if seen[cfg.Key] {
			return 0, apperrors.ValidationFailed("Duplicate action key", cfg.Key)
		}
		seen[cfg.Key] = true
		rows = append(rows, cfg)
	}

	written, err := s.configs.SeedActionConfigs(ctx, rows, overwrite)
	if err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}
	s.log.Infow("Action configs seeded", "rows", len(rows), "written", written, "overwrite", overwrite)
	return written, nil
}

// normalizeActionConfig validates a row. Built-in keys keep their fixed
// penalty flag.
func normalizeActionConfig(cfg types.ActionConfig) (types.ActionConfig, error) {
	cfg.Key = strings.TrimSpace(cfg.Key)
	cfg.Label = strings.TrimSpace(cfg.Label)
	if !actionKeyPattern.MatchString(cfg.Key) {
		return cfg, apperrors.ValidationFailed("Invalid action key",
			"keys are lowercase letters, digits and underscores: "+cfg.Key)
	}
	if cfg.Label == "" {
		return cfg, apperrors.ValidationFailed("Missing label", cfg.Key)
	}
	if cfg.Weight < 0 {
		return cfg, apperrors.ValidationFailed("Invalid weight", "weight must not be negative; use isNegative for penalties")
	}
	t := types.EventType(cfg.Key)
	cfg.BuiltIn = t.IsBuiltIn()
	if cfg.BuiltIn {
		cfg.IsNegative = t.IsPenalty()
	}
	return cfg, nil
}

func (s *ConfigService) GetConfig(ctx context.Context, key string) (json.RawMessage, error) {
	if !configKeyPattern.MatchString(key) {
		return nil, apperrors.NotFound("Config", key)
	}
	value, err := s.configs.GetConfig(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Config", key)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return value, nil
}

func (s *ConfigService) PutConfig(ctx context.Context, key string, value json.RawMessage) error {
	if !configKeyPattern.MatchString(key) {
		return apperrors.ValidationFailed("Invalid config key", key)
	}
	if len(value) == 0 || !json.Valid(value) {
		return apperrors.ValidationFailed("Invalid config value", "value must be a JSON document")
	}
	if err := s.configs.PutConfig(ctx, key, value); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	s.log.Infow("Config saved", "key", key, "bytes", len(value))
	return nil
}
