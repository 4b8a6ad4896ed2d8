package cart

import (
	"context"
	"sync"

	"floralie_back_end/internal/models"
)

// MemoryStore garde les paniers en mémoire. Utilisé par les tests et
// comme solution de repli quand Redis n'est pas configuré.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]models.CartItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string][]models.CartItem{}}
}

func (s *MemoryStore) Load(ctx context.Context, key string) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[key]
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, items []models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(items) == 0 {
		delete(s.carts, key)
		return nil
	}
	stored := make([]models.CartItem, len(items))
	copy(stored, items)
	s.carts[key] = stored
	return nil
}

// Take vide le panier et retourne son contenu sous le même verrou :
// un seul appelant concurrent obtient les lignes.
func (s *MemoryStore) Take(ctx context.Context, key string) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[key]
	delete(s.carts, key)
	return items, nil
}

func (s *MemoryStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}
