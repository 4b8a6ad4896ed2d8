package bot

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Les conversations abandonnées expirent au bout d'une heure.
const conversationTTL = time.Hour

// StateStore conserve l'état de conversation par chat. Get retourne nil
// quand aucune conversation n'est en cours.
type StateStore interface {
	Get(ctx context.Context, chatID string) (*Conversation, error)
	Put(ctx context.Context, chatID string, conv Conversation) error
	Delete(ctx context.Context, chatID string) error
}

// RedisStateStore sérialise chaque conversation en JSON sous
// botconv:<chatID> : une conversation survit à un redémarrage du bot.
type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func convKey(chatID string) string {
	return "botconv:" + chatID
}

func (s *RedisStateStore) Get(ctx context.Context, chatID string) (*Conversation, error) {
	data, err := s.client.Get(ctx, convKey(chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var conv Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *RedisStateStore) Put(ctx context.Context, chatID string, conv Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, convKey(chatID), data, conversationTTL).Err()
}

func (s *RedisStateStore) Delete(ctx context.Context, chatID string) error {
	return s.client.Del(ctx, convKey(chatID)).Err()
}

// MemoryStateStore garde les conversations en mémoire (tests, mode dégradé).
type MemoryStateStore struct {
	mu    sync.Mutex
	convs map[string]Conversation
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{convs: make(map[string]Conversation)}
}

func (s *MemoryStateStore) Get(_ context.Context, chatID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[chatID]
	if !ok {
		return nil, nil
	}
	c := conv
	return &c, nil
}

func (s *MemoryStateStore) Put(_ context.Context, chatID string, conv Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[chatID] = conv
	return nil
}

func (s *MemoryStateStore) Delete(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, chatID)
	return nil
}
