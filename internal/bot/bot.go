package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"floralie_back_end/internal/catalog"
	"floralie_back_end/internal/models"
	"floralie_back_end/internal/orders"
	"floralie_back_end/internal/users"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot est le contexte explicite du bot Telegram : il possède ses propres
// clients et services, aucun état global partagé entre requêtes.
type Bot struct {
	api       *tgbotapi.BotAPI
	flow      *Flow
	states    StateStore
	catalog   catalog.Store
	orders    *orders.Service
	directory *users.Directory
}

func New(api *tgbotapi.BotAPI, flow *Flow, states StateStore, cat catalog.Store,
	orderSvc *orders.Service, directory *users.Directory) *Bot {
	return &Bot{
		api:       api,
		flow:      flow,
		states:    states,
		catalog:   cat,
		orders:    orderSvc,
		directory: directory,
	}
}

// Run démarre la boucle de long polling. Bloquant.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	log.Printf("🤖 Bot Telegram démarré : @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Println("🔌 Bot Telegram arrêté")
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg, chatID)
	case "catalog":
		b.handleCatalog(ctx, msg)
	case "status":
		b.handleStatus(ctx, msg, chatID)
	case "order":
		b.handleOrderStart(ctx, msg, chatID)
	case "cancel":
		b.endConversation(ctx, msg, chatID)
	case "help":
		b.reply(msg, "/start - Commencer\n/catalog - Voir le catalogue de fleurs\n/order - Passer une commande\n/status - Suivre vos commandes\n/cancel - Annuler la commande en cours")
	default:
		b.handleText(ctx, msg, chatID)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message, chatID string) {
	// /start <jeton> : liaison d'un compte web au chat Telegram
	if token := strings.TrimSpace(msg.CommandArguments()); token != "" {
		userID, err := b.directory.ConsumeTelegramLinkToken(ctx, token)
		if err != nil {
			b.reply(msg, "🔗 Jeton de liaison inconnu ou expiré. Regénérez le QR depuis votre profil.")
			return
		}
		if err := b.directory.LinkTelegram(ctx, userID, chatID); err != nil {
			log.Printf("❌ Liaison Telegram impossible (user=%s): %v", userID, err)
			b.reply(msg, "😔 Une erreur est survenue, réessayez plus tard.")
			return
		}
		b.reply(msg, "🔗 Compte lié ! Vous recevrez ici les mises à jour de vos commandes.")
		return
	}

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/catalog"),
			tgbotapi.NewKeyboardButton("/order"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/status"),
			tgbotapi.NewKeyboardButton("/help"),
		),
	)
	out := tgbotapi.NewMessage(msg.Chat.ID,
		"🌸 Bienvenue chez Floralie !\nCommandez vos fleurs et suivez vos livraisons directement ici.")
	out.ReplyMarkup = keyboard
	if _, err := b.api.Send(out); err != nil {
		log.Printf("❌ Erreur envoi message Telegram: %v", err)
	}
}

func (b *Bot) handleCatalog(ctx context.Context, msg *tgbotapi.Message) {
	products, err := b.catalog.List(ctx, "")
	if err != nil {
		log.Printf("❌ Erreur lecture catalogue: %v", err)
		b.reply(msg, "😔 Catalogue momentanément indisponible.")
		return
	}

	var bld strings.Builder
	bld.WriteString("💐 Fleurs disponibles :\n")
	count := 0
	for _, p := range products {
		if p.IsActive {
			fmt.Fprintf(&bld, "• %s — %.2f€ (%s)\n", p.Name, p.Price, models.ProductCategories[p.Category])
			count++
		}
	}
	if count == 0 {
		b.reply(msg, "😔 Aucune fleur disponible pour le moment.")
		return
	}
	b.reply(msg, bld.String())
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message, chatID string) {
	orderList, err := b.orders.ListByChat(ctx, chatID)
	if err != nil {
		log.Printf("❌ Erreur lecture commandes (chat=%s): %v", chatID, err)
		b.reply(msg, "😔 Impossible de récupérer vos commandes pour le moment.")
		return
	}
	if len(orderList) == 0 {
		b.reply(msg, "Vous n'avez aucune commande. Tapez /order pour en passer une !")
		return
	}

	var bld strings.Builder
	bld.WriteString("📦 Vos commandes :\n")
	for _, o := range orderList {
		var parts []string
		for _, item := range o.Items {
			parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
		}
		fmt.Fprintf(&bld, "• #%s : %s — %s\n", o.ID.String()[:8], strings.Join(parts, ", "), o.StatusLabel())
	}
	b.reply(msg, bld.String())
}

func (b *Bot) handleOrderStart(ctx context.Context, msg *tgbotapi.Message, chatID string) {
	conv, prompt, err := b.flow.Start(ctx)
	if err != nil {
		if err == ErrClosed {
			b.reply(msg, prompt)
			return
		}
		log.Printf("❌ Erreur démarrage conversation (chat=%s): %v", chatID, err)
		b.reply(msg, "😔 Une erreur est survenue, réessayez plus tard.")
		return
	}

	if err := b.states.Put(ctx, chatID, conv); err != nil {
		log.Printf("❌ Erreur sauvegarde conversation (chat=%s): %v", chatID, err)
		b.reply(msg, "😔 Une erreur est survenue, réessayez plus tard.")
		return
	}
	b.reply(msg, prompt)
}

func (b *Bot) endConversation(ctx context.Context, msg *tgbotapi.Message, chatID string) {
	if err := b.states.Delete(ctx, chatID); err != nil {
		log.Printf("❌ Erreur suppression conversation (chat=%s): %v", chatID, err)
	}
	b.reply(msg, "❌ Commande annulée. Tapez /order pour recommencer.")
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message, chatID string) {
	conv, err := b.states.Get(ctx, chatID)
	if err != nil {
		log.Printf("❌ Erreur lecture conversation (chat=%s): %v", chatID, err)
		return
	}
	if conv == nil {
		b.reply(msg, "Tapez /order pour passer commande, /catalog pour voir les fleurs.")
		return
	}

	reply, done, err := b.flow.Step(ctx, chatID, conv, msg.Text)
	if err != nil {
		log.Printf("❌ Erreur conversation (chat=%s, état=%s): %v", chatID, conv.State, err)
		b.states.Delete(ctx, chatID)
		b.reply(msg, "😔 Une erreur est survenue, la commande a été abandonnée. Tapez /order pour recommencer.")
		return
	}

	if done {
		b.states.Delete(ctx, chatID)
	} else if err := b.states.Put(ctx, chatID, *conv); err != nil {
		log.Printf("❌ Erreur sauvegarde conversation (chat=%s): %v", chatID, err)
	}
	b.reply(msg, reply)
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, text)); err != nil {
		log.Printf("❌ Erreur envoi message Telegram: %v", err)
	}
}
