package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramChannel envoie les notifications de commande sur Telegram :
// l'administrateur est prévenu de chaque création, le client de chaque
// changement de statut (s'il a lié son chat Telegram).
type TelegramChannel struct {
	api         *tgbotapi.BotAPI
	adminChatID string
	directory   Directory
}

func NewTelegramChannel(api *tgbotapi.BotAPI, adminChatID string, directory Directory) *TelegramChannel {
	return &TelegramChannel{api: api, adminChatID: adminChatID, directory: directory}
}

func (t *TelegramChannel) Name() string { return "telegram" }

func (t *TelegramChannel) Send(ctx context.Context, evt Event) error {
	if t.api == nil {
		return fmt.Errorf("%w: bot Telegram non configuré", ErrNoRecipient)
	}

	if evt.Created {
		// Création : message à l'administrateur
		if t.adminChatID == "" {
			return fmt.Errorf("%w: ADMIN_TELEGRAM_CHAT_ID absent", ErrNoRecipient)
		}
		admin := fmt.Sprintf("🌸 Nouvelle commande #%s — %.2f€\n%s", evt.OrderID, evt.Total, evt.Message)
		if err := t.sendTo(t.adminChatID, admin); err != nil {
			return err
		}
		// Et confirmation au client s'il est joignable
		if chatID := t.resolveChatID(ctx, evt); chatID != "" {
			return t.sendTo(chatID, evt.Message)
		}
		return nil
	}

	chatID := t.resolveChatID(ctx, evt)
	if chatID == "" {
		return fmt.Errorf("%w: pas de chat Telegram lié pour l'utilisateur %q", ErrNoRecipient, evt.UserID)
	}
	return t.sendTo(chatID, evt.Message)
}

// resolveChatID privilégie le chat porté par l'événement (commandes bot),
// sinon l'identifiant enregistré dans le profil utilisateur.
func (t *TelegramChannel) resolveChatID(ctx context.Context, evt Event) string {
	if evt.ChatID != "" {
		return evt.ChatID
	}
	if evt.UserID == "" || t.directory == nil {
		return ""
	}
	chatID, err := t.directory.ChatID(ctx, evt.UserID)
	if err != nil {
		return ""
	}
	return chatID
}

func (t *TelegramChannel) sendTo(chatID, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("chat_id %q invalide: %v", chatID, err)
	}
	_, err = t.api.Send(tgbotapi.NewMessage(id, text))
	return err
}
