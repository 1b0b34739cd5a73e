package ports

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
)

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is an outgoing email.
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ReceiptRenderer renders order receipts.
type ReceiptRenderer interface {
	PDF(order *domain.Order, customer *domain.User) ([]byte, error)
	HTML(order *domain.Order, customer *domain.User) (string, error)
}
