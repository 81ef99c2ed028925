package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"property-quote/internal/common/errors"
)

const draftKeyPrefix = "quote:draft:"

// RedisDraftStore keeps drafts as JSON under quote:draft:<id> with a TTL.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func (s *RedisDraftStore) Save(ctx context.Context, draft *Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKeyPrefix+draft.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft %s: %w", draft.ID, err)
	}
	return nil
}

func (s *RedisDraftStore) Load(ctx context.Context, id string) (*Draft, error) {
	val, err := s.client.Get(ctx, draftKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, errors.NewDraftNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewDraftStoreFailedError(err)
	}

	var draft Draft
	if err := json.Unmarshal([]byte(val), &draft); err != nil {
		return nil, errors.NewDraftStoreFailedError(fmt.Errorf("decode draft %s: %w", id, err))
	}
	return &draft, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, draftKeyPrefix+id).Err()
}
