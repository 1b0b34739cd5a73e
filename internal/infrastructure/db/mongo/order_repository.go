package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

const collectionOrders = "orders"

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

type variantSnapshotDoc struct {
	Size     string  `bson:"size,omitempty"`
	Color    string  `bson:"color,omitempty"`
	Material string  `bson:"material,omitempty"`
	Price    float64 `bson:"price"`
}

type orderItemDoc struct {
	ProductID    primitive.ObjectID  `bson:"productId"`
	VariantID    string              `bson:"variantId,omitempty"`
	Name         string              `bson:"name"`
	Thumbnail    string              `bson:"thumbnail,omitempty"`
	Price        float64             `bson:"price"`
	CODAvailable bool                `bson:"codAvailable"`
	Quantity     int                 `bson:"quantity"`
	Variant      *variantSnapshotDoc `bson:"variant,omitempty"`
}

// paymentInfoDoc omits an empty paymentId so the partial unique index only
// covers gateway payments.
type paymentInfoDoc struct {
	PaymentID string    `bson:"paymentId,omitempty"`
	OrderID   string    `bson:"orderId,omitempty"`
	Signature string    `bson:"signature,omitempty"`
	Paid      bool      `bson:"paid"`
	Method    string    `bson:"method"`
	Amount    float64   `bson:"amount"`
	Currency  string    `bson:"currency"`
	Timestamp time.Time `bson:"timestamp"`
}

type orderDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          primitive.ObjectID `bson:"userId"`
	Items           []orderItemDoc     `bson:"items"`
	TotalAmount     float64            `bson:"totalAmount"`
	ShippingAddress addressDoc         `bson:"shippingAddress"`
	Status          string             `bson:"status"`
	PaymentInfo     paymentInfoDoc     `bson:"paymentInfo"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func toOrderDoc(o *domain.Order) (orderDoc, error) {
	userID, ok := objectID(o.UserID)
	if !ok {
		return orderDoc{}, fmt.Errorf("%w: malformed user id %q", domain.ErrInvalidInput, o.UserID)
	}
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		productID, ok := objectID(it.ProductID)
		if !ok {
			return orderDoc{}, fmt.Errorf("%w: malformed product id %q", domain.ErrInvalidInput, it.ProductID)
		}
		item := orderItemDoc{
			ProductID:    productID,
			VariantID:    it.VariantID,
			Name:         it.Name,
			Thumbnail:    it.Thumbnail,
			Price:        it.Price,
			CODAvailable: it.CODAvailable,
			Quantity:     it.Quantity,
		}
		if it.Variant != nil {
			v := variantSnapshotDoc(*it.Variant)
			item.Variant = &v
		}
		items = append(items, item)
	}
	return orderDoc{
		UserID:          userID,
		Items:           items,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: addressDoc(o.ShippingAddress),
		Status:          string(o.Status),
		PaymentInfo:     paymentInfoDoc(o.PaymentInfo),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

func (d *orderDoc) toDomain() *domain.Order {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		item := domain.OrderItem{
			ProductID:    hexOrEmpty(it.ProductID),
			VariantID:    it.VariantID,
			Name:         it.Name,
			Thumbnail:    it.Thumbnail,
			Price:        it.Price,
			CODAvailable: it.CODAvailable,
			Quantity:     it.Quantity,
		}
		if it.Variant != nil {
			v := domain.VariantSnapshot(*it.Variant)
			item.Variant = &v
		}
		items = append(items, item)
	}
	return &domain.Order{
		ID:              d.ID.Hex(),
		UserID:          hexOrEmpty(d.UserID),
		Items:           items,
		TotalAmount:     d.TotalAmount,
		ShippingAddress: domain.Address(d.ShippingAddress),
		Status:          domain.OrderStatus(d.Status),
		PaymentInfo:     domain.PaymentInfo(d.PaymentInfo),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	doc, err := toOrderDoc(o)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrPaymentProcessed
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc orderDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	oid, ok := objectID(userID)
	if !ok {
		return []*domain.Order{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"userId": oid}, options.Find().SetSort(newestFirst()))
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return decodeOrders(ctx, cur)
}

func orderFilter(f ports.ListOrdersFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.UserID != "" {
		oid, _ := objectID(f.UserID)
		filter["userId"] = oid
	}
	return filter
}

func (r *OrderRepository) List(ctx context.Context, f ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := orderFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	cur, err := r.col.Find(ctx, filter, pageOptions(f.Page, f.Limit).SetSort(newestFirst()))
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	orders, err := decodeOrders(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func decodeOrders(ctx context.Context, cur *mongo.Cursor) ([]*domain.Order, error) {
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// UpdateStatus is a compare-and-set on status; only status and updatedAt change.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, expected, next domain.OrderStatus) (*domain.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": string(next), "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid, "status": string(expected)}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either gone or moved by a concurrent update.
		n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": oid})
		if cerr == nil && n > 0 {
			return nil, domain.ErrInvalidTransition
		}
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the listing indexes and the unique partial index on
// the gateway payment id.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys: bson.D{{Key: "paymentInfo.paymentId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"paymentInfo.paymentId": bson.M{"$type": "string"}}),
		},
	})
	return err
}
