package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"floralie_back_end/internal/cache"
	"floralie_back_end/internal/database"
	"floralie_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// Store est la vue lecture seule du catalogue utilisée par le panier,
// les commandes et le bot.
type Store interface {
	GetProduct(ctx context.Context, productID string) (models.Product, error)
	Price(ctx context.Context, productID string) (float64, error)
	List(ctx context.Context, category string) ([]models.Product, error)
	FindByName(ctx context.Context, name string) (models.Product, error)
}

// ScyllaStore lit les produits depuis le keyspace products.
type ScyllaStore struct{}

func NewScyllaStore() *ScyllaStore {
	return &ScyllaStore{}
}

const productColumns = `product_id, name, description, price, category, image_url, is_popular, rating, is_active, created_at, updated_at`

func scanProduct(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Product, error) {
	var p models.Product
	err := scanner.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.ImageURL, &p.IsPopular, &p.Rating, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *ScyllaStore) GetProduct(ctx context.Context, productID string) (models.Product, error) {
	if cached := cache.GetProduct(ctx, productID); cached != nil {
		return *cached, nil
	}

	session, err := database.GetProductsSession()
	if err != nil {
		return models.Product{}, err
	}

	pid, err := uuid.Parse(productID)
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: id produit invalide", models.ErrNotFound)
	}

	p, err := scanProduct(session.Query(
		`SELECT `+productColumns+` FROM products WHERE product_id = ?`,
		gocql.UUID(pid)).WithContext(ctx))
	if err != nil {
		if err == gocql.ErrNotFound {
			return models.Product{}, fmt.Errorf("%w: produit %s", models.ErrNotFound, productID)
		}
		return models.Product{}, err
	}

	cache.SetProduct(ctx, p)
	return p, nil
}

func (s *ScyllaStore) Price(ctx context.Context, productID string) (float64, error) {
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.Price, nil
}

func (s *ScyllaStore) List(ctx context.Context, category string) ([]models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.ImageURL, &p.IsPopular, &p.Rating, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		if category == "" || p.Category == category {
			products = append(products, p)
		}
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return products, nil
}

// FindByName retrouve un produit actif par nom exact (insensible à la casse).
// Utilisé par le bot quand l'utilisateur tape le nom d'une fleur.
func (s *ScyllaStore) FindByName(ctx context.Context, name string) (models.Product, error) {
	products, err := s.List(ctx, "")
	if err != nil {
		return models.Product{}, err
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, p := range products {
		if strings.ToLower(p.Name) == want && p.IsActive {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: produit %q", models.ErrNotFound, name)
}

// SaveProduct insère ou met à jour un produit (surface admin).
func (s *ScyllaStore) SaveProduct(ctx context.Context, p models.Product) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}
	if err := session.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.ImageURL,
		p.IsPopular, p.Rating, p.IsActive, p.CreatedAt, p.UpdatedAt).WithContext(ctx).Exec(); err != nil {
		return err
	}
	cache.InvalidateProduct(ctx, p.ID.String())
	return nil
}

// DeleteProduct retire un produit du catalogue.
func (s *ScyllaStore) DeleteProduct(ctx context.Context, productID gocql.UUID) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}
	if err := session.Query(`DELETE FROM products WHERE product_id = ?`, productID).WithContext(ctx).Exec(); err != nil {
		return err
	}
	cache.InvalidateProduct(ctx, productID.String())
	return nil
}

// UpdateRating recalcule la note moyenne après un nouvel avis.
func (s *ScyllaStore) UpdateRating(ctx context.Context, productID gocql.UUID, rating float64) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}
	if err := session.Query(`UPDATE products SET rating = ?, updated_at = ? WHERE product_id = ?`,
		rating, time.Now(), productID).WithContext(ctx).Exec(); err != nil {
		return err
	}
	cache.InvalidateProduct(ctx, productID.String())
	return nil
}
