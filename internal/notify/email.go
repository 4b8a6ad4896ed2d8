package notify

import (
	"context"
	"fmt"
	"os"

	"floralie_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

// EmailChannel envoie les notifications par email via SMTP :
// l'administrateur reçoit les créations, le client les changements de statut.
type EmailChannel struct {
	adminEmail string
	directory  Directory
}

func NewEmailChannel(adminEmail string, directory Directory) *EmailChannel {
	return &EmailChannel{adminEmail: adminEmail, directory: directory}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Send(ctx context.Context, evt Event) error {
	if evt.Created {
		if e.adminEmail == "" {
			return fmt.Errorf("%w: ADMIN_EMAIL absent", ErrNoRecipient)
		}
		subject := fmt.Sprintf("🌸 Nouvelle commande #%s - Floralie", evt.OrderID)
		return sendEmail(ctx, e.adminEmail, subject, orderEmailHTML(evt))
	}

	if evt.UserID == "" || e.directory == nil {
		return fmt.Errorf("%w: commande anonyme sans email", ErrNoRecipient)
	}
	to, err := e.directory.Email(ctx, evt.UserID)
	if err != nil || to == "" {
		return fmt.Errorf("%w: pas d'email pour l'utilisateur %q", ErrNoRecipient, evt.UserID)
	}
	return sendEmail(ctx, to, statusEmailSubject(evt.Status), orderEmailHTML(evt))
}

func sendEmail(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	if err := msg.From(os.Getenv("SMTP_FROM")); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	return client.DialAndSendWithContext(ctx, msg)
}

func statusEmailSubject(status string) string {
	switch status {
	case models.StatusConfirmed:
		return "✅ Commande confirmée - Floralie"
	case models.StatusShipped:
		return "📦 Votre commande est en route - Floralie"
	case models.StatusDelivered:
		return "🎉 Votre commande a été livrée - Floralie"
	case models.StatusCanceled:
		return "❌ Commande annulée - Floralie"
	default:
		return "📋 Mise à jour de votre commande - Floralie"
	}
}

func orderEmailHTML(evt Event) string {
	label := models.StatusLabels[evt.Status]
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Floralie</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">🌸 Floralie</h2>
		<p>%s</p>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tr>
				<td style="padding: 8px; color: #666;">Commande</td>
				<td style="padding: 8px; text-align: right;">#%s</td>
			</tr>
			<tr>
				<td style="padding: 8px; color: #666;">Statut</td>
				<td style="padding: 8px; text-align: right; font-weight: bold;">%s</td>
			</tr>
			<tr>
				<td style="padding: 8px; color: #666;">Total</td>
				<td style="padding: 8px; text-align: right; font-weight: bold;">%.2f€</td>
			</tr>
		</table>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Floralie</strong>
		</p>
	</div>
</body>
</html>`, evt.Message, evt.OrderID, label, evt.Total)
}
