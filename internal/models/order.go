package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de commande (énumération fermée)
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCanceled  = "canceled"
)

// StatusLabels est la table fixe statut → libellé affichable.
// Exposée telle quelle aux couches web et bot pour le rendu.
var StatusLabels = map[string]string{
	StatusPending:   "En attente",
	StatusConfirmed: "Confirmée",
	StatusShipped:   "Expédiée",
	StatusDelivered: "Livrée",
	StatusCanceled:  "Annulée",
}

// allowedTransitions décrit le graphe pending → confirmed → shipped → delivered,
// avec annulation possible depuis tout état non terminal.
var allowedTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusShipped, StatusCanceled},
	StatusShipped:   {StatusDelivered, StatusCanceled},
	StatusDelivered: {},
	StatusCanceled:  {},
}

// IsValidStatus indique si le statut appartient à l'énumération.
func IsValidStatus(status string) bool {
	_, ok := StatusLabels[status]
	return ok
}

// IsTerminalStatus indique si aucune transition n'est permise depuis ce statut.
func IsTerminalStatus(status string) bool {
	return status == StatusDelivered || status == StatusCanceled
}

// CanTransition valide l'arête (from, to). Une transition vers le statut
// courant est refusée : pas de succès idempotent silencieux.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	Name      string     `json:"name" db:"name"`
	Quantity  int        `json:"quantity" db:"quantity"`
	// Price est le prix unitaire figé au moment de la commande.
	// Il ne suit jamais les changements de prix du catalogue.
	Price float64 `json:"price" db:"price"`
}

type Order struct {
	ID        gocql.UUID  `json:"id" db:"order_id"`
	UserID    string      `json:"user_id,omitempty" db:"user_id"`
	ChatID    string      `json:"chat_id,omitempty" db:"chat_id"`
	Address   string      `json:"address" db:"address"`
	Comments  string      `json:"comments,omitempty" db:"comments"`
	Status    string      `json:"status" db:"status"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// TotalPrice est la somme des sous-totaux figés. Pure, sans effet de bord.
func (o Order) TotalPrice() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// StatusLabel retourne le libellé affichable du statut courant.
func (o Order) StatusLabel() string {
	return StatusLabels[o.Status]
}
