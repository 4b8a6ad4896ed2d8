package orders

import (
	"context"
	"time"

	"floralie_back_end/internal/models"
	"floralie_back_end/internal/notify"
)

// Store persiste les commandes. L'insertion est tout-ou-rien : une
// commande partiellement écrite ne doit jamais survivre.
type Store interface {
	Insert(ctx context.Context, order models.Order) error
	Get(ctx context.Context, orderID string) (models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListByChat(ctx context.Context, chatID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)

	// CompareAndSetStatus applique from → to seulement si le statut stocké
	// vaut encore from. Retourne (appliqué, statut courant). Deux appels
	// concurrents sur la même commande : un seul gagne.
	CompareAndSetStatus(ctx context.Context, orderID, from, to string, at time.Time) (bool, string, error)
}

// Directory fournit le contrôle de capacité administrateur.
type Directory interface {
	IsAuthorizedAdmin(ctx context.Context, actorID string) (bool, error)
}

// Notifier reçoit les événements de cycle de vie après commit.
type Notifier interface {
	Dispatch(evt notify.Event)
}
