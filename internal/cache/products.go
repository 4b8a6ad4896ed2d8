package cache

import (
	"context"
	"encoding/json"
	"time"

	"floralie_back_end/internal/database"
	"floralie_back_end/internal/models"
)

const ProductCacheTTL = 10 * time.Minute

// GetProduct récupère un produit depuis le cache Redis, nil si absent.
func GetProduct(ctx context.Context, productID string) *models.Product {
	if database.Redis == nil {
		return nil
	}

	data, err := database.Redis.Get(ctx, "product:"+productID).Result()
	if err != nil {
		return nil
	}

	var p models.Product
	if json.Unmarshal([]byte(data), &p) != nil {
		return nil
	}
	return &p
}

// SetProduct met un produit en cache.
func SetProduct(ctx context.Context, p models.Product) {
	if database.Redis == nil {
		return
	}
	data, _ := json.Marshal(p)
	database.Redis.Set(ctx, "product:"+p.ID.String(), data, ProductCacheTTL)
}

// InvalidateProduct retire un produit du cache après modification.
func InvalidateProduct(ctx context.Context, productID string) {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(ctx, "product:"+productID)
}
