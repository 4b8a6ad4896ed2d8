package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"floralie_back_end/internal/catalog"
	"floralie_back_end/internal/models"
	"floralie_back_end/internal/orders"
)

// États de la conversation de commande. Chaque état n'accepte qu'une
// catégorie d'entrée et ne progresse que sur entrée valide ; une entrée
// invalide redemande sans avancer.
const (
	StateSelectProduct  = "select_product"
	StateSelectQuantity = "select_quantity"
	StateCustomQuantity = "custom_quantity"
	StateAskingAddress  = "asking_address"
	StateConfirmation   = "confirmation"
)

// Conversation est l'état explicite d'une prise de commande : étiquette
// d'état courant + champs accumulés, sérialisable telle quelle.
type Conversation struct {
	State       string    `json:"state"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Address     string    `json:"address"`
	StartedAt   time.Time `json:"started_at"`
}

// OrderCreator est le point d'entrée du cœur appelé à la confirmation.
type OrderCreator interface {
	Create(ctx context.Context, input orders.CreateInput) (models.Order, error)
}

// Flow pilote la conversation de commande du bot.
type Flow struct {
	catalog   catalog.Store
	orders    OrderCreator
	openHour  int
	closeHour int
	now       func() time.Time
}

func NewFlow(cat catalog.Store, creator OrderCreator, openHour, closeHour int) *Flow {
	return &Flow{
		catalog:   cat,
		orders:    creator,
		openHour:  openHour,
		closeHour: closeHour,
		now:       time.Now,
	}
}

// WithinOperatingHours indique si la boutique accepte les commandes à
// l'instant t (heure locale du déploiement).
func WithinOperatingHours(t time.Time, openHour, closeHour int) bool {
	h := t.Hour()
	return h >= openHour && h < closeHour
}

// ErrClosed : commande refusée hors de la fenêtre d'ouverture. La
// demande n'est pas mise en attente, la conversation se termine.
var ErrClosed = errors.New("boutique fermée")

// Start ouvre une conversation de commande. Garde horaire évaluée à
// l'entrée du flux uniquement.
func (f *Flow) Start(ctx context.Context) (Conversation, string, error) {
	if !WithinOperatingHours(f.now(), f.openHour, f.closeHour) {
		return Conversation{}, fmt.Sprintf(
			"🌙 La boutique est fermée. Les commandes sont acceptées de %dh à %dh. À bientôt !",
			f.openHour, f.closeHour), ErrClosed
	}

	prompt, err := f.productPrompt(ctx)
	if err != nil {
		return Conversation{}, "", err
	}
	return Conversation{State: StateSelectProduct, StartedAt: f.now()}, prompt, nil
}

// IsCancel reconnaît une demande d'annulation, acceptée depuis tous les
// états, sans effet de bord.
func IsCancel(input string) bool {
	in := strings.ToLower(strings.TrimSpace(input))
	return in == "/cancel" || in == "annuler" || in == "❌ annuler"
}

// Step fait avancer la conversation d'une entrée utilisateur.
// done=true signifie conversation terminée (commande créée ou annulée).
func (f *Flow) Step(ctx context.Context, chatID string, conv *Conversation, input string) (reply string, done bool, err error) {
	if IsCancel(input) {
		return "❌ Commande annulée. Tapez /order pour recommencer.", true, nil
	}

	switch conv.State {
	case StateSelectProduct:
		return f.stepProduct(ctx, conv, input)
	case StateSelectQuantity:
		return f.stepQuantity(conv, input)
	case StateCustomQuantity:
		return f.stepCustomQuantity(conv, input)
	case StateAskingAddress:
		return f.stepAddress(conv, input)
	case StateConfirmation:
		return f.stepConfirmation(ctx, chatID, conv, input)
	default:
		return "", true, fmt.Errorf("état de conversation inconnu: %q", conv.State)
	}
}

func (f *Flow) productPrompt(ctx context.Context) (string, error) {
	products, err := f.catalog.List(ctx, "")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("🌸 Quelle fleur souhaitez-vous commander ?\n")
	for _, p := range products {
		if p.IsActive {
			fmt.Fprintf(&b, "• %s — %.2f€\n", p.Name, p.Price)
		}
	}
	b.WriteString("Envoyez le nom du produit (ou « annuler »).")
	return b.String(), nil
}

func (f *Flow) stepProduct(ctx context.Context, conv *Conversation, input string) (string, bool, error) {
	product, err := f.catalog.FindByName(ctx, input)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Entrée invalide : on redemande sans avancer
			return "🤔 Produit introuvable. Vérifiez le nom et réessayez (ou « annuler »).", false, nil
		}
		return "", false, err
	}

	conv.ProductID = product.ID.String()
	conv.ProductName = product.Name
	conv.Price = product.Price
	conv.State = StateSelectQuantity
	return fmt.Sprintf("💐 %s — %.2f€ l'unité.\nCombien en voulez-vous ? (1, 3, 5, 10 ou « autre »)",
		product.Name, product.Price), false, nil
}

func (f *Flow) stepQuantity(conv *Conversation, input string) (string, bool, error) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "autre" {
		conv.State = StateCustomQuantity
		return "✏️ Indiquez la quantité souhaitée :", false, nil
	}
	return f.acceptQuantity(conv, in)
}

func (f *Flow) stepCustomQuantity(conv *Conversation, input string) (string, bool, error) {
	return f.acceptQuantity(conv, strings.TrimSpace(input))
}

func (f *Flow) acceptQuantity(conv *Conversation, input string) (string, bool, error) {
	qty, err := strconv.Atoi(input)
	if err != nil || qty < 1 {
		return "🔢 Quantité invalide. Envoyez un nombre entier positif (ou « annuler »).", false, nil
	}
	conv.Quantity = qty
	conv.State = StateAskingAddress
	return "📍 À quelle adresse faut-il livrer ?", false, nil
}

func (f *Flow) stepAddress(conv *Conversation, input string) (string, bool, error) {
	address := strings.TrimSpace(input)
	if address == "" {
		return "📍 L'adresse ne peut pas être vide. Où faut-il livrer ?", false, nil
	}
	conv.Address = address
	conv.State = StateConfirmation
	return fmt.Sprintf("🧾 Récapitulatif :\n%s x%d — %.2f€\nLivraison : %s\n\nConfirmer la commande ? (confirmer / annuler)",
		conv.ProductName, conv.Quantity, conv.Price*float64(conv.Quantity), conv.Address), false, nil
}

func (f *Flow) stepConfirmation(ctx context.Context, chatID string, conv *Conversation, input string) (string, bool, error) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in != "confirmer" && in != "oui" && in != "✅ confirmer" {
		return "Répondez « confirmer » pour valider ou « annuler » pour abandonner.", false, nil
	}

	// Le tampon de conversation devient un panier transitoire à usage
	// unique, converti en une seule création de commande
	order, err := f.orders.Create(ctx, orders.CreateInput{
		ChatID:  chatID,
		Address: conv.Address,
		Items: []models.CartItem{{
			ProductID: conv.ProductID,
			Name:      conv.ProductName,
			Price:     conv.Price,
			Quantity:  conv.Quantity,
		}},
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrValidation) {
			return "😔 Impossible de créer la commande : " + err.Error() + "\nTapez /order pour recommencer.", true, nil
		}
		return "", true, err
	}

	return fmt.Sprintf("✅ Votre commande de %s x%d est enregistrée (total %.2f€). Suivez-la avec /status.",
		conv.ProductName, conv.Quantity, order.TotalPrice()), true, nil
}
