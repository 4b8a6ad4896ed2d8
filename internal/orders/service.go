package orders

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"floralie_back_end/internal/cart"
	"floralie_back_end/internal/catalog"
	"floralie_back_end/internal/models"
	"floralie_back_end/internal/notify"

	"github.com/gocql/gocql"
)

// Service est la machine à états des commandes : création depuis un
// panier, transitions de statut, notifications après commit.
type Service struct {
	store     Store
	carts     *cart.Service
	catalog   catalog.Store
	directory Directory
	notifier  Notifier
}

func NewService(store Store, carts *cart.Service, cat catalog.Store, directory Directory, notifier Notifier) *Service {
	return &Service{store: store, carts: carts, catalog: cat, directory: directory, notifier: notifier}
}

// CreateInput alimente la création d'une commande : depuis un panier
// persistant (Checkout) ou depuis le tampon de conversation du bot.
type CreateInput struct {
	UserID   string
	ChatID   string
	Address  string
	Comments string
	Items    []models.CartItem
}

// Checkout convertit le panier en commande. La prise du panier est
// atomique : un second checkout concurrent voit un panier déjà vide et
// échoue en validation, jamais de commande dupliquée. Si la création
// échoue après la prise, le panier est restauré.
func (s *Service) Checkout(ctx context.Context, owner cart.Owner, address, comments string) (models.Order, error) {
	if strings.TrimSpace(address) == "" {
		return models.Order{}, fmt.Errorf("%w: adresse de livraison obligatoire", models.ErrValidation)
	}

	items, err := s.carts.Take(ctx, owner)
	if err != nil {
		return models.Order{}, err
	}

	order, err := s.Create(ctx, CreateInput{
		UserID:   owner.UserID,
		Address:  address,
		Comments: comments,
		Items:    items,
	})
	if err != nil {
		// Le panier ne doit pas être perdu tant que la commande
		// n'existe pas durablement
		if len(items) > 0 {
			if restoreErr := s.carts.Restore(ctx, owner, items); restoreErr != nil {
				log.Printf("❌ Restauration du panier impossible (%s): %v", owner.UserID, restoreErr)
			}
		}
		return models.Order{}, err
	}
	return order, nil
}

// Create crée une commande en statut pending. Les prix catalogue courants
// sont figés ligne par ligne : les totaux historiques restent stables
// même si le catalogue change ensuite.
func (s *Service) Create(ctx context.Context, input CreateInput) (models.Order, error) {
	if len(input.Items) == 0 {
		return models.Order{}, fmt.Errorf("%w: panier vide", models.ErrValidation)
	}
	if strings.TrimSpace(input.Address) == "" {
		return models.Order{}, fmt.Errorf("%w: adresse de livraison obligatoire", models.ErrValidation)
	}

	now := time.Now()
	order := models.Order{
		ID:        gocql.TimeUUID(),
		UserID:    input.UserID,
		ChatID:    input.ChatID,
		Address:   strings.TrimSpace(input.Address),
		Comments:  input.Comments,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, item := range input.Items {
		if item.Quantity < 1 {
			return models.Order{}, fmt.Errorf("%w: quantité invalide pour %s", models.ErrValidation, item.Name)
		}
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return models.Order{}, err
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Price:     product.Price, // prix figé au moment de la commande
		})
	}

	if err := s.store.Insert(ctx, order); err != nil {
		return models.Order{}, err
	}

	// Notification uniquement après l'écriture durable
	s.notifier.Dispatch(notify.Event{
		OrderID: shortID(order.ID),
		UserID:  order.UserID,
		ChatID:  order.ChatID,
		Status:  order.Status,
		Total:   order.TotalPrice(),
		Created: true,
		Message: creationMessage(order),
	})

	return order, nil
}

// Transition applique une arête du graphe de statuts. L'acteur doit avoir
// la capacité administrateur ; l'arête doit partir du statut courant :
// redemander le statut déjà en place est refusé, pas de no-op silencieux.
func (s *Service) Transition(ctx context.Context, orderID, newStatus, actorID string) (models.Order, error) {
	if !models.IsValidStatus(newStatus) {
		return models.Order{}, fmt.Errorf("%w: statut %q inconnu", models.ErrValidation, newStatus)
	}

	isAdmin, err := s.directory.IsAuthorizedAdmin(ctx, actorID)
	if err != nil {
		return models.Order{}, err
	}
	if !isAdmin {
		return models.Order{}, fmt.Errorf("%w: changement de statut réservé aux administrateurs", models.ErrPermission)
	}

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	// Deux tentatives : si le CAS échoue, on réévalue l'arête depuis le
	// statut devenu courant (l'appel concurrent a gagné)
	for attempt := 0; attempt < 2; attempt++ {
		if !models.CanTransition(order.Status, newStatus) {
			return models.Order{}, fmt.Errorf("%w: %s → %s",
				models.ErrInvalidTransition, models.StatusLabels[order.Status], models.StatusLabels[newStatus])
		}

		now := time.Now()
		applied, current, err := s.store.CompareAndSetStatus(ctx, orderID, order.Status, newStatus, now)
		if err != nil {
			return models.Order{}, err
		}
		if applied {
			order.Status = newStatus
			order.UpdatedAt = now
			s.notifier.Dispatch(notify.Event{
				OrderID: shortID(order.ID),
				UserID:  order.UserID,
				ChatID:  order.ChatID,
				Status:  newStatus,
				Total:   order.TotalPrice(),
				Message: statusMessage(order, newStatus),
			})
			return order, nil
		}
		order.Status = current
	}

	return models.Order{}, fmt.Errorf("%w: la commande %s a été modifiée en parallèle", models.ErrConflict, orderID)
}

// Get retourne une commande par id.
func (s *Service) Get(ctx context.Context, orderID string) (models.Order, error) {
	return s.store.Get(ctx, orderID)
}

// ListByUser retourne l'historique d'un utilisateur (projection lecture).
func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.ListByUser(ctx, userID)
}

// ListByChat retourne les commandes passées depuis un chat Telegram.
func (s *Service) ListByChat(ctx context.Context, chatID string) ([]models.Order, error) {
	return s.store.ListByChat(ctx, chatID)
}

// ListAll retourne toutes les commandes (surface admin).
func (s *Service) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.store.ListAll(ctx)
}

func shortID(id gocql.UUID) string {
	return id.String()[:8]
}

func creationMessage(order models.Order) string {
	var parts []string
	for _, item := range order.Items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}
	return fmt.Sprintf("Votre commande #%s (%s) a bien été enregistrée — total %.2f€.",
		shortID(order.ID), strings.Join(parts, ", "), order.TotalPrice())
}

func statusMessage(order models.Order, status string) string {
	return fmt.Sprintf("Votre commande #%s a été mise à jour. Nouveau statut : %s.",
		shortID(order.ID), models.StatusLabels[status])
}
