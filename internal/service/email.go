package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"
)

// emailNotifier sends customer-facing notifications through SendGrid.
type emailNotifier struct {
	apiKey    string
	fromEmail string
	fromName  string
	directory repository.DirectoryRepository
}

func NewEmailNotifier(apiKey, fromEmail, fromName string, directory repository.DirectoryRepository) Notifier {
	return &emailNotifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		directory: directory,
	}
}

func (n *emailNotifier) send(to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	recipient := mail.NewEmail(toName, to)

	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(n.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (n *emailNotifier) SendPickupConfirmation(ctx context.Context, order *domain.RentalOrder) error {
	contact, err := n.directory.GetContact(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve customer contact: %w", err)
	}

	subject := fmt.Sprintf("Order %s confirmed", order.OrderNumber)
	plainText := fmt.Sprintf("Your rental order %s is confirmed. Total: %s. Your items are reserved and ready for pickup.",
		order.OrderNumber, order.Total.String())
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Order Confirmed</h2>
				<p>Your rental order <strong>%s</strong> is confirmed.</p>
				<p>Total: <strong>%s</strong></p>
				<p>Your items are reserved and ready for pickup.</p>
			</body>
		</html>
	`, order.OrderNumber, order.Total.String())

	return n.send(contact.Email, contact.Name, subject, plainText, htmlContent)
}

func (n *emailNotifier) SendReturnReminder(ctx context.Context, order *domain.RentalOrder, endDate time.Time) error {
	contact, err := n.directory.GetContact(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve customer contact: %w", err)
	}

	due := endDate.Format("Mon, 02 Jan 2006 15:04 MST")
	subject := fmt.Sprintf("Return reminder for order %s", order.OrderNumber)
	plainText := fmt.Sprintf("The rental period for order %s ends on %s. Please return your items on time to avoid late fees.",
		order.OrderNumber, due)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Return Reminder</h2>
				<p>The rental period for order <strong>%s</strong> ends on <strong>%s</strong>.</p>
				<p>Please return your items on time to avoid late fees.</p>
			</body>
		</html>
	`, order.OrderNumber, due)

	return n.send(contact.Email, contact.Name, subject, plainText, htmlContent)
}

func (n *emailNotifier) SendLateReturnAlert(ctx context.Context, order *domain.RentalOrder, daysLate int32, lateFee domain.Money) error {
	contact, err := n.directory.GetContact(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve customer contact: %w", err)
	}

	subject := fmt.Sprintf("Overdue return on order %s", order.OrderNumber)
	plainText := fmt.Sprintf("Order %s is %d day(s) overdue. Late fees accrued so far: %s. Please return your items as soon as possible.",
		order.OrderNumber, daysLate, lateFee.String())
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>Overdue Return</h2>
				<p>Order <strong>%s</strong> is <strong>%d day(s)</strong> overdue.</p>
				<p>Late fees accrued so far: <strong>%s</strong></p>
				<p>Please return your items as soon as possible.</p>
			</body>
		</html>
	`, order.OrderNumber, daysLate, lateFee.String())

	return n.send(contact.Email, contact.Name, subject, plainText, htmlContent)
}
