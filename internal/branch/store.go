package branch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store persists branches and booking settings in redis. Branches live in one
// hash per org so listing a location directory is a single HGETALL; settings
// are a document per branch.
type Store struct {
	redis *redis.Client
}

// NewStore creates a branch store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) branchesKey(orgID string) string {
	return fmt.Sprintf("branches:%s", orgID)
}

func (s *Store) settingsKey(orgID string, branchID uuid.UUID) string {
	return fmt.Sprintf("branch:settings:%s:%s", orgID, branchID)
}

// Branch loads one branch, nil when absent.
func (s *Store) Branch(ctx context.Context, orgID string, id uuid.UUID) (*Branch, error) {
	data, err := s.redis.HGet(ctx, s.branchesKey(orgID), id.String()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("branch: get: %w", err)
	}
	var b Branch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("branch: unmarshal: %w", err)
	}
	return &b, nil
}

// List returns all branches for an org.
func (s *Store) List(ctx context.Context, orgID string) ([]Branch, error) {
	entries, err := s.redis.HGetAll(ctx, s.branchesKey(orgID)).Result()
	if err != nil {
		return nil, fmt.Errorf("branch: list: %w", err)
	}
	branches := make([]Branch, 0, len(entries))
	for _, raw := range entries {
		var b Branch
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("branch: unmarshal: %w", err)
		}
		branches = append(branches, b)
	}
	return branches, nil
}

// Save upserts a branch.
func (s *Store) Save(ctx context.Context, b *Branch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("branch: marshal: %w", err)
	}
	if err := s.redis.HSet(ctx, s.branchesKey(b.OrgID), b.ID.String(), data).Err(); err != nil {
		return fmt.Errorf("branch: save: %w", err)
	}
	return nil
}

// Settings loads booking settings for a branch, nil when none are configured.
func (s *Store) Settings(ctx context.Context, orgID string, branchID uuid.UUID) (*Settings, error) {
	data, err := s.redis.Get(ctx, s.settingsKey(orgID, branchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("branch: get settings: %w", err)
	}
	var cfg Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("branch: unmarshal settings: %w", err)
	}
	return &cfg, nil
}

// SaveSettings upserts booking settings.
func (s *Store) SaveSettings(ctx context.Context, cfg *Settings) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("branch: marshal settings: %w", err)
	}
	if err := s.redis.Set(ctx, s.settingsKey(cfg.OrgID, cfg.BranchID), data, 0).Err(); err != nil {
		return fmt.Errorf("branch: save settings: %w", err)
	}
	return nil
}
