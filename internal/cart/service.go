package cart

import (
	"context"
	"fmt"

	"floralie_back_end/internal/catalog"
	"floralie_back_end/internal/models"
)

// Owner identifie le propriétaire d'un panier : un utilisateur connecté
// OU un jeton de session anonyme, jamais les deux, jamais aucun.
type Owner struct {
	UserID  string
	Session string
}

// Key retourne la clé de stockage du panier, ou ErrConflict si le
// descripteur ne désigne pas exactement un propriétaire.
func (o Owner) Key() (string, error) {
	switch {
	case o.UserID != "" && o.Session != "":
		return "", fmt.Errorf("%w: panier à double propriétaire", models.ErrConflict)
	case o.UserID != "":
		return "user:" + o.UserID, nil
	case o.Session != "":
		return "session:" + o.Session, nil
	default:
		return "", fmt.Errorf("%w: panier sans propriétaire", models.ErrConflict)
	}
}

// Store persiste les lignes de panier. Take vide le panier et retourne
// son contenu en une seule opération atomique (conversion en commande).
type Store interface {
	Load(ctx context.Context, key string) ([]models.CartItem, error)
	Save(ctx context.Context, key string, items []models.CartItem) error
	Take(ctx context.Context, key string) ([]models.CartItem, error)
	Clear(ctx context.Context, key string) error
}

// Service est l'agrégat panier. Le panier est créé paresseusement au
// premier ajout et détruit exactement lors de sa conversion en commande.
type Service struct {
	store   Store
	catalog catalog.Store
}

func NewService(store Store, cat catalog.Store) *Service {
	return &Service{store: store, catalog: cat}
}

// Get retourne le panier courant (vide si jamais créé).
func (s *Service) Get(ctx context.Context, owner Owner) (models.Cart, error) {
	key, err := owner.Key()
	if err != nil {
		return models.Cart{}, err
	}
	items, err := s.store.Load(ctx, key)
	if err != nil {
		return models.Cart{}, err
	}
	return models.Cart{Owner: key, Items: items}, nil
}

// AddItem ajoute quantity exemplaires d'un produit. Si une ligne existe
// déjà pour ce produit, sa quantité est incrémentée.
func (s *Service) AddItem(ctx context.Context, owner Owner, productID string, quantity int) (models.Cart, error) {
	key, err := owner.Key()
	if err != nil {
		return models.Cart{}, err
	}
	if quantity < 1 {
		return models.Cart{}, fmt.Errorf("%w: la quantité doit être au moins 1", models.ErrValidation)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return models.Cart{}, err
	}
	if !product.IsActive {
		return models.Cart{}, fmt.Errorf("%w: produit %s indisponible", models.ErrNotFound, product.Name)
	}

	items, err := s.store.Load(ctx, key)
	if err != nil {
		return models.Cart{}, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, models.CartItem{
			ProductID: productID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			ImageURL:  product.ImageURL,
		})
	}

	if err := s.store.Save(ctx, key, items); err != nil {
		return models.Cart{}, err
	}
	return models.Cart{Owner: key, Items: items}, nil
}

// SetItemQuantity fixe la quantité d'une ligne. Une quantité ≤ 0 supprime
// la ligne : comportement "zéro supprime" voulu, le même endpoint sert
// de mise à jour et de suppression.
func (s *Service) SetItemQuantity(ctx context.Context, owner Owner, productID string, quantity int) (models.Cart, error) {
	key, err := owner.Key()
	if err != nil {
		return models.Cart{}, err
	}
	items, err := s.store.Load(ctx, key)
	if err != nil {
		return models.Cart{}, err
	}

	if quantity <= 0 {
		return s.removeLine(ctx, key, items, productID)
	}

	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			if err := s.store.Save(ctx, key, items); err != nil {
				return models.Cart{}, err
			}
			return models.Cart{Owner: key, Items: items}, nil
		}
	}
	return models.Cart{}, fmt.Errorf("%w: ligne de panier %s", models.ErrNotFound, productID)
}

// RemoveItem supprime une ligne. Idempotent : supprimer une ligne absente
// réussit sans erreur (tolère les doubles clics concurrents).
func (s *Service) RemoveItem(ctx context.Context, owner Owner, productID string) (models.Cart, error) {
	key, err := owner.Key()
	if err != nil {
		return models.Cart{}, err
	}
	items, err := s.store.Load(ctx, key)
	if err != nil {
		return models.Cart{}, err
	}
	return s.removeLine(ctx, key, items, productID)
}

func (s *Service) removeLine(ctx context.Context, key string, items []models.CartItem, productID string) (models.Cart, error) {
	kept := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	if err := s.store.Save(ctx, key, kept); err != nil {
		return models.Cart{}, err
	}
	return models.Cart{Owner: key, Items: kept}, nil
}

// Total calcule le total au prix catalogue COURANT : contrairement aux
// commandes, un panier suit toujours les prix en vigueur.
func (s *Service) Total(ctx context.Context, owner Owner) (float64, error) {
	key, err := owner.Key()
	if err != nil {
		return 0, err
	}
	items, err := s.store.Load(ctx, key)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, item := range items {
		price, err := s.catalog.Price(ctx, item.ProductID)
		if err != nil {
			return 0, err
		}
		total += price * float64(item.Quantity)
	}
	return total, nil
}

// Clear vide le panier.
func (s *Service) Clear(ctx context.Context, owner Owner) error {
	key, err := owner.Key()
	if err != nil {
		return err
	}
	return s.store.Clear(ctx, key)
}

// Take vide le panier et retourne ses lignes, atomiquement. C'est le
// point d'entrée de la conversion en commande : deux checkouts
// concurrents ne peuvent pas tous les deux obtenir les lignes.
func (s *Service) Take(ctx context.Context, owner Owner) ([]models.CartItem, error) {
	key, err := owner.Key()
	if err != nil {
		return nil, err
	}
	return s.store.Take(ctx, key)
}

// Restore remet les lignes dans le panier après un échec de conversion :
// le panier ne doit pas être perdu si la commande n'a pas été créée.
func (s *Service) Restore(ctx context.Context, owner Owner, items []models.CartItem) error {
	key, err := owner.Key()
	if err != nil {
		return err
	}
	return s.store.Save(ctx, key, items)
}
