package cart

import (
	"context"
	"encoding/json"
	"time"

	"floralie_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

// Les paniers vivent 30 jours dans Redis, comme les sessions anonymes.
const cartTTL = 30 * 24 * time.Hour

// RedisStore stocke chaque panier en JSON sous la clé cart:<owner>.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func cartKey(key string) string {
	return "cart:" + key
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]models.CartItem, error) {
	data, err := s.client.Get(ctx, cartKey(key)).Result()
	if err == redis.Nil || data == "" {
		return nil, nil // panier jamais créé = panier vide
	}
	if err != nil {
		return nil, err
	}
	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, items []models.CartItem) error {
	if len(items) == 0 {
		return s.Clear(ctx, key)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cartKey(key), data, cartTTL).Err()
}

// Take lit et supprime le panier en un seul aller-retour (GETDEL).
// Deux checkouts concurrents : le premier obtient les lignes, le second
// voit un panier vide.
func (s *RedisStore) Take(ctx context.Context, key string) ([]models.CartItem, error) {
	data, err := s.client.GetDel(ctx, cartKey(key)).Result()
	if err == redis.Nil || data == "" {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, cartKey(key)).Err()
}
