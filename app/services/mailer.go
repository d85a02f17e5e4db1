package services

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"

	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/repositories"
	"github.com/threadline/storefront/app/utils/format"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type Mailer struct {
	config Config
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		config: cfg,
		send:   smtp.SendMail,
	}
}

func (m *Mailer) SendHTMLEmail(to, subject, htmlBody string) error {
	headers := []string{
		"From: " + m.config.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	if err := m.send(addr, auth, m.config.From, []string{to}, []byte(msg)); err != nil {
		log.Printf("Mailer: failed to send HTML email to %s: %v", to, err)
		return fmt.Errorf("failed to send HTML email: %w", err)
	}
	return nil
}

func BuildOrderConfirmationEmailBody(customerName string, order models.Order) string {
	var rows strings.Builder
	if snapshot, err := order.Snapshot(); err == nil {
		for _, item := range snapshot.Items {
			fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
				html.EscapeString(item.Title), item.Quantity, format.Price(item.Subtotal()))
		}
	}

	return fmt.Sprintf(`
        <!DOCTYPE html>
        <html>
        <head>
            <meta charset="utf-8">
            <title>Order confirmation</title>
            <style>
                body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
                .container { max-width: 600px; margin: 20px auto; padding: 20px; border: 1px solid #ddd; border-radius: 5px; }
                table { width: 100%%; border-collapse: collapse; }
                td { padding: 6px 0; border-bottom: 1px solid #eee; }
                .total { font-size: 1.2em; font-weight: bold; }
            </style>
        </head>
        <body>
            <div class="container">
                <h2>Thanks for your order, %s!</h2>
                <p>Order <strong>%s</strong> is now %s.</p>
                <table>%s</table>
                <p class="total">Total: %s</p>
                <p>Payment: %s</p>
                <p>Shipping to: %s</p>
            </div>
        </body>
        </html>
    `,
		html.EscapeString(customerName),
		html.EscapeString(order.ID),
		html.EscapeString(string(order.OrderStatus)),
		rows.String(),
		format.Price(order.TotalAmount),
		html.EscapeString(order.PaymentStatus),
		html.EscapeString(order.Address),
	)
}

// OrderMailNotifier emails the customer when an order is recorded. Sending happens in the
// background; failures are only logged.
type OrderMailNotifier struct {
	mailer   *Mailer
	userRepo repositories.UserRepositoryImpl
}

func NewOrderMailNotifier(mailer *Mailer, userRepo repositories.UserRepositoryImpl) *OrderMailNotifier {
	return &OrderMailNotifier{mailer: mailer, userRepo: userRepo}
}

func (n *OrderMailNotifier) PublishOrderCreated(ctx context.Context, order models.Order) error {
	user, err := n.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("failed to load customer for order %s: %w", order.ID, err)
	}
	if user == nil || user.Email == "" {
		return nil
	}

	go func(to, name string) {
		subject := fmt.Sprintf("Your order %s is confirmed", order.ID)
		if err := n.mailer.SendHTMLEmail(to, subject, BuildOrderConfirmationEmailBody(name, order)); err != nil {
			log.Printf("OrderMailNotifier: confirmation for order %s not sent: %v", order.ID, err)
		}
	}(user.Email, user.Name)
	return nil
}
