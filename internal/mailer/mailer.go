package mailer

import (
	"context"
	"fmt"
	"strings"

	"modaix-api/internal/config"
	"modaix-api/internal/domain"

	gomail "github.com/wneessen/go-mail"
)

// Mailer sends transactional mail. Order placement treats send failures as
// non-fatal: they are logged by the caller and never roll back an order.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to, customerName string, receipt *domain.OrderReceipt) error
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewSMTP creates a Mailer backed by an SMTP relay.
func NewSMTP(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) SendOrderConfirmation(ctx context.Context, to, customerName string, receipt *domain.OrderReceipt) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(fmt.Sprintf("Confirmación de Pedido - MODAIX #%s", receipt.OrderNumber))
	msg.SetBodyString(gomail.TypeTextPlain, confirmationBody(customerName, receipt))

	client, err := gomail.NewClient(
		m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.User),
		gomail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	return nil
}

func confirmationBody(customerName string, receipt *domain.OrderReceipt) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hola %s,\n\n", customerName)
	b.WriteString("¡Gracias por tu compra! Tu pedido ha sido confirmado y está siendo procesado.\n\n")
	fmt.Fprintf(&b, "Número de Orden: %s\n", receipt.OrderNumber)
	fmt.Fprintf(&b, "Fecha: %s\n\n", receipt.PurchasedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("Detalles del Pedido:\n")
	for _, item := range receipt.Items {
		fmt.Fprintf(&b, "  - %s (talla %s) x%d — $%.2f\n",
			item.ProductName, item.Size, item.Quantity, item.Price*float64(item.Quantity))
	}

	fmt.Fprintf(&b, "\nEnvío: $%.2f\n", receipt.Shipping)
	fmt.Fprintf(&b, "Total: $%.2f\n", receipt.Total)

	return b.String()
}
