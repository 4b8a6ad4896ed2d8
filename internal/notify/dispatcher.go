package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Event décrit un changement de cycle de vie d'une commande. Transient :
// produit par la machine à états, consommé par le dispatcher, jamais persisté.
type Event struct {
	OrderID string
	UserID  string
	ChatID  string
	Status  string
	Message string
	Total   float64
	Created bool // création de commande vs changement de statut
}

// ErrNoRecipient signale l'absence d'identifiant de destinataire pour un
// canal. Ce n'est pas une erreur de livraison : la livraison est sautée.
var ErrNoRecipient = errors.New("aucun destinataire pour ce canal")

// Channel est un mécanisme de livraison (message Telegram, email).
type Channel interface {
	Name() string
	Send(ctx context.Context, evt Event) error
}

// Directory résout les coordonnées d'un utilisateur pour le routage.
type Directory interface {
	ChatID(ctx context.Context, userID string) (string, error)
	Email(ctx context.Context, userID string) (string, error)
}

// Dispatcher livre chaque événement indépendamment sur chaque canal.
// Un échec sur un canal est journalisé et n'empêche ni les autres canaux,
// ni le changement d'état déjà committé qui l'a déclenché. Rien ne
// remonte jamais à l'appelant de transition/checkout.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher construit un dispatcher explicite : pas d'instance globale,
// chaque binaire possède le sien avec ses propres clients de canaux.
func NewDispatcher(timeout time.Duration, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{channels: channels, timeout: timeout}
}

// Dispatch envoie l'événement sur tous les canaux, chacun dans sa propre
// goroutine avec un délai borné. Appelé uniquement APRÈS le commit du
// changement d'état, jamais dans la transaction de stockage.
func (d *Dispatcher) Dispatch(evt Event) {
	for _, ch := range d.channels {
		d.wg.Add(1)
		go func(ch Channel) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			err := ch.Send(ctx, evt)
			switch {
			case err == nil:
				log.Printf("📨 Notification envoyée (canal=%s, commande=%s, statut=%s)",
					ch.Name(), evt.OrderID, evt.Status)
			case errors.Is(err, ErrNoRecipient):
				log.Printf("⚠️ Livraison sautée (canal=%s, commande=%s): %v",
					ch.Name(), evt.OrderID, err)
			default:
				log.Printf("❌ Échec notification (canal=%s, commande=%s): %v",
					ch.Name(), evt.OrderID, err)
			}
		}(ch)
	}
}

// Wait attend la fin des livraisons en cours (arrêt propre et tests).
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
