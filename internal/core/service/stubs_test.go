package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) byEmail(email string) *domain.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.byEmail(user.Email) != nil {
		return nil, domain.ErrEmailInUse
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u := r.byEmail(email); u != nil {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	stored, ok := r.users[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	stored.Name = user.Name
	stored.Phone = user.Phone
	stored.Address = user.Address
	stored.Role = user.Role
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = user.UpdatedAt
	return cloneUser(stored), nil
}

func (r *stubUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *stubUserRepo) List(_ context.Context, f ports.ListUsersFilter) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) DeleteMany(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.users[id]; ok {
			delete(r.users, id)
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	products map[string]*domain.Product
	replaced []string
	updates  []ports.MediaEdit
	nextID   int
}

func newStubProductRepo(products ...*domain.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[string]*domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func cloneProduct(p *domain.Product) *domain.Product {
	clone := *p
	clone.Variants = append([]domain.Variant(nil), p.Variants...)
	clone.Media = append([]domain.Media(nil), p.Media...)
	return &clone
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.nextID++
	stored := cloneProduct(p)
	stored.ID = fmt.Sprintf("prod-%d", r.nextID)
	r.products[stored.ID] = stored
	return cloneProduct(stored), nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *stubProductRepo) FindBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug {
			return cloneProduct(p), nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Product, error) {
	out := make(map[string]*domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = cloneProduct(p)
		}
	}
	return out, nil
}

// Update mirrors the Mongo repo: media comes from the stored document with
// the edit applied, never from p.
func (r *stubProductRepo) Update(_ context.Context, p *domain.Product, edit ports.MediaEdit) (*domain.Product, error) {
	stored, ok := r.products[p.ID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	r.updates = append(r.updates, edit)

	drop := make(map[string]bool, len(edit.Drop))
	for _, u := range edit.Drop {
		drop[u] = true
	}
	var media []domain.Media
	for _, m := range stored.Media {
		if !drop[m.URL] {
			media = append(media, m)
		}
	}

	next := cloneProduct(p)
	next.Media = append(media, edit.Add...)
	r.products[p.ID] = next
	return cloneProduct(next), nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	delete(r.products, id)
	return p, nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubProductRepo) List(_ context.Context, f ports.ProductFilter) ([]*domain.Product, int64, error) {
	var out []*domain.Product
	for _, p := range r.products {
		if !f.IncludeInactive && !p.IsActive {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice != nil && p.BasePrice < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.BasePrice > *f.MaxPrice {
			continue
		}
		if f.Featured != nil && p.IsFeatured != *f.Featured {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Title), needle) && !strings.Contains(strings.ToLower(p.Description), needle) {
				continue
			}
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *stubProductRepo) ReplaceMedia(_ context.Context, ownerID, localURL string, hosted domain.Media) error {
	p, ok := r.products[ownerID]
	if !ok {
		return fmt.Errorf("%w: %w", domain.ErrProductNotFound, domain.ErrMediaDetached)
	}
	for i := range p.Media {
		if p.Media[i].URL == localURL {
			p.Media[i] = hosted
			r.replaced = append(r.replaced, localURL)
			return nil
		}
	}
	return fmt.Errorf("%w: %w: %s", domain.ErrProductNotFound, domain.ErrMediaDetached, localURL)
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	orders    map[string]*domain.Order
	byPayment map[string]string
	createErr error
	nextID    int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]*domain.Order), byPayment: make(map[string]string)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Items = append([]domain.OrderItem(nil), o.Items...)
	return &clone
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if pid := o.PaymentInfo.PaymentID; pid != "" {
		if _, exists := r.byPayment[pid]; exists {
			return nil, domain.ErrPaymentProcessed
		}
	}
	r.nextID++
	stored := cloneOrder(o)
	stored.ID = fmt.Sprintf("order-%d", r.nextID)
	r.orders[stored.ID] = stored
	if pid := o.PaymentInfo.PaymentID; pid != "" {
		r.byPayment[pid] = stored.ID
	}
	return cloneOrder(stored), nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r *stubOrderRepo) List(_ context.Context, f ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, expected, next domain.OrderStatus) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != expected {
		return nil, domain.ErrOrderNotFound
	}
	o.Status = next
	return cloneOrder(o), nil
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

// stubGateway hands out order_gw_1, order_gw_2, ... and remembers them for
// FetchOrder.
type stubGateway struct {
	validSignature string
	created        []int64
	createErr      error
	orders         map[string]*domain.GatewayOrder
}

func (g *stubGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*domain.GatewayOrder, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, amount)
	o := &domain.GatewayOrder{ID: fmt.Sprintf("order_gw_%d", len(g.created)), Amount: amount, Currency: currency, Receipt: receipt}
	if g.orders == nil {
		g.orders = make(map[string]*domain.GatewayOrder)
	}
	stored := *o
	g.orders[o.ID] = &stored
	return o, nil
}

func (g *stubGateway) FetchOrder(_ context.Context, id string) (*domain.GatewayOrder, error) {
	o, ok := g.orders[id]
	if !ok {
		return nil, fmt.Errorf("razorpay: order %s does not exist", id)
	}
	clone := *o
	return &clone, nil
}

func (g *stubGateway) VerifySignature(_, _, signature string) bool {
	return signature == g.validSignature
}

func (g *stubGateway) KeyID() string { return "rzp_test_key" }

type stubPaymentLock struct {
	held     map[string]bool
	released []string
}

func newStubPaymentLock() *stubPaymentLock {
	return &stubPaymentLock{held: make(map[string]bool)}
}

func (l *stubPaymentLock) Acquire(_ context.Context, paymentID string) (bool, error) {
	if l.held[paymentID] {
		return false, nil
	}
	l.held[paymentID] = true
	return true, nil
}

func (l *stubPaymentLock) Release(_ context.Context, paymentID string) error {
	delete(l.held, paymentID)
	l.released = append(l.released, paymentID)
	return nil
}

// ---------------------------------------------------------------------------
// Background work, mail and media
// ---------------------------------------------------------------------------

// stubQueue records tasks; runAll executes them inline.
type stubQueue struct {
	mu    sync.Mutex
	tasks []ports.Task
}

func (q *stubQueue) Enqueue(task ports.Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
}

func (q *stubQueue) names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.tasks))
	for _, t := range q.tasks {
		out = append(out, t.Name)
	}
	return out
}

func (q *stubQueue) keys() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.tasks))
	for _, t := range q.tasks {
		out = append(out, t.Key)
	}
	return out
}

func (q *stubQueue) runAll(ctx context.Context) []error {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	var errs []error
	for _, t := range tasks {
		if err := t.Run(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

type stubMailer struct {
	mu      sync.Mutex
	sent    []ports.Message
	failFor map[string]bool
}

func (m *stubMailer) Send(_ context.Context, msg ports.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, to := range msg.To {
		if m.failFor[to] {
			return fmt.Errorf("smtp: mailbox unavailable: %s", to)
		}
	}
	m.sent = append(m.sent, msg)
	return nil
}

type stubRenderer struct {
	err error
}

func (r *stubRenderer) PDF(order *domain.Order, _ *domain.User) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-" + order.ID), nil
}

func (r *stubRenderer) HTML(order *domain.Order, _ *domain.User) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "<p>" + order.ID + "</p>", nil
}

// stubPipeline stages uploads as /uploads/<filename> without touching disk.
type stubPipeline struct {
	stageErr  error
	migrated  map[string][]domain.StagedFile
	discarded []domain.StagedFile
	purged    map[string][]domain.Media
}

func newStubPipeline() *stubPipeline {
	return &stubPipeline{migrated: make(map[string][]domain.StagedFile), purged: make(map[string][]domain.Media)}
}

func (p *stubPipeline) Stage(_ context.Context, uploads []ports.Upload) ([]domain.StagedFile, error) {
	if p.stageErr != nil {
		return nil, p.stageErr
	}
	out := make([]domain.StagedFile, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, domain.StagedFile{
			Name:        u.Filename,
			LocalPath:   "/tmp/" + u.Filename,
			URL:         "/uploads/" + u.Filename,
			Type:        domain.MediaTypeFor(u.ContentType),
			ContentType: u.ContentType,
		})
	}
	return out, nil
}

func (p *stubPipeline) Migrate(_ ports.MediaOwner, ownerID string, files []domain.StagedFile) {
	p.migrated[ownerID] = append(p.migrated[ownerID], files...)
}

func (p *stubPipeline) Discard(files []domain.StagedFile) {
	p.discarded = append(p.discarded, files...)
}

func (p *stubPipeline) Purge(ownerID string, media []domain.Media) {
	p.purged[ownerID] = append(p.purged[ownerID], media...)
}
