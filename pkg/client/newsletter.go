package client

import (
	"context"
	"net/http"
	"net/url"
)

type NewsletterAPI struct{ c *Client }

func (n *NewsletterAPI) Subscribe(ctx context.Context, email string) (*Subscriber, error) {
	var out Subscriber
	if err := n.c.do(ctx, http.MethodPost, "/newsletter/subscribe", nil, map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (n *NewsletterAPI) Unsubscribe(ctx context.Context, email string) error {
	return n.c.do(ctx, http.MethodPost, "/newsletter/unsubscribe", nil, map[string]string{"email": email}, nil)
}

// Send schedules a broadcast and returns the number of recipients.
func (n *NewsletterAPI) Send(ctx context.Context, subject, html string) (int, error) {
	var out struct {
		Recipients int `json:"recipients"`
	}
	in := map[string]string{"subject": subject, "html": html}
	if err := n.c.do(ctx, http.MethodPost, "/newsletter/send", nil, in, &out); err != nil {
		return 0, err
	}
	return out.Recipients, nil
}

func (n *NewsletterAPI) Subscribers(ctx context.Context, page, limit int) (*Page[Subscriber], error) {
	v := url.Values{}
	setPaging(v, page, limit)
	var out Page[Subscriber]
	if err := n.c.do(ctx, http.MethodGet, "/newsletter/subscribers", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
