package ports

import (
	"context"

	"github.com/printcraft/storefront/internal/core/domain"
)

type SubscriberRepository interface {
	// Create returns domain.ErrSubscriberExists on a unique index violation.
	Create(ctx context.Context, s *domain.Subscriber) (*domain.Subscriber, error)
	DeleteByEmail(ctx context.Context, email string) error
	List(ctx context.Context, page, limit int) ([]*domain.Subscriber, int64, error)
	// Emails returns every subscribed address.
	Emails(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

// SubscriberPage is a page of subscribers.
type SubscriberPage struct {
	Items      []*domain.Subscriber `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"totalPages"`
}

type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (*domain.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	// Send schedules a broadcast and returns the number of recipients.
	Send(ctx context.Context, subject, html string) (int, error)
	ListSubscribers(ctx context.Context, page, limit int) (*SubscriberPage, error)
}
