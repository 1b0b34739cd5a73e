package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/printcraft/storefront/internal/api/metrics"
	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// NewsletterService manages subscribers and broadcasts.
type NewsletterService struct {
	repo      ports.SubscriberRepository
	mailer    ports.Mailer
	queue     ports.TaskQueue
	clientURL string
	logger    zerolog.Logger
}

func NewNewsletterService(repo ports.SubscriberRepository, mailer ports.Mailer, queue ports.TaskQueue, clientURL string, logger zerolog.Logger) *NewsletterService {
	return &NewsletterService{
		repo:      repo,
		mailer:    mailer,
		queue:     queue,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger,
	}
}

func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}
	sub, err := s.repo.Create(ctx, &domain.Subscriber{Email: email, SubscribedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("subscriber_id", sub.ID).Msg("newsletter subscription")
	return sub, nil
}

func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	return s.repo.DeleteByEmail(ctx, email)
}

// Send schedules the broadcast of body to every subscriber. Each recipient
// gets an individual message with an unsubscribe footer.
func (s *NewsletterService) Send(ctx context.Context, subject, body string) (int, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" || strings.TrimSpace(body) == "" {
		return 0, fmt.Errorf("%w: subject and content are required", domain.ErrInvalidInput)
	}

	recipients, err := s.repo.Emails(ctx)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	s.queue.Enqueue(ports.Task{
		Key:  "newsletter",
		Name: "newsletter_send",
		Run: func(ctx context.Context) error {
			return s.broadcast(ctx, subject, body, recipients)
		},
	})
	s.logger.Info().Int("recipients", len(recipients)).Str("subject", subject).Msg("newsletter scheduled")
	return len(recipients), nil
}

func (s *NewsletterService) broadcast(ctx context.Context, subject, body string, recipients []string) error {
	var failed []error
	for _, to := range recipients {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.mailer.Send(ctx, ports.Message{
			To:      []string{to},
			Subject: subject,
			HTML:    body + s.footer(to),
		})
		if err != nil {
			metrics.NewsletterEmailsTotal.WithLabelValues("failed").Inc()
			failed = append(failed, fmt.Errorf("%s: %w", to, err))
			continue
		}
		metrics.NewsletterEmailsTotal.WithLabelValues("sent").Inc()
	}
	if len(failed) > 0 {
		return fmt.Errorf("newsletter: %d of %d deliveries failed: %w", len(failed), len(recipients), errors.Join(failed...))
	}
	return nil
}

func (s *NewsletterService) footer(email string) string {
	return fmt.Sprintf(`<hr><p style="font-size:12px;color:#888">You are receiving this because %s subscribed. `+
		`<a href="%s/newsletter/unsubscribe?email=%s">Unsubscribe</a></p>`,
		html.EscapeString(email), s.clientURL, url.QueryEscape(email))
}

func (s *NewsletterService) ListSubscribers(ctx context.Context, page, limit int) (*ports.SubscriberPage, error) {
	page, limit = normalizePage(page, limit)
	items, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &ports.SubscriberPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}
