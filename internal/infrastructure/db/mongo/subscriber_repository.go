package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/printcraft/storefront/internal/core/domain"
)

const collectionSubscribers = "newsletter_subscribers"

type SubscriberRepository struct {
	col *mongo.Collection
}

func NewSubscriberRepository(db *mongo.Database) *SubscriberRepository {
	return &SubscriberRepository{col: db.Collection(collectionSubscribers)}
}

type subscriberDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	SubscribedAt time.Time          `bson:"subscribedAt"`
}

func (d *subscriberDoc) toDomain() *domain.Subscriber {
	return &domain.Subscriber{ID: d.ID.Hex(), Email: d.Email, SubscribedAt: d.SubscribedAt}
}

func (r *SubscriberRepository) Create(ctx context.Context, s *domain.Subscriber) (*domain.Subscriber, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := subscriberDoc{Email: s.Email, SubscribedAt: s.SubscribedAt}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrSubscriberExists
		}
		return nil, fmt.Errorf("insert subscriber: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *SubscriberRepository) DeleteByEmail(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSubscriberNotFound
	}
	return nil
}

func (r *SubscriberRepository) List(ctx context.Context, page, limit int) ([]*domain.Subscriber, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count subscribers: %w", err)
	}
	opts := pageOptions(page, limit).SetSort(bson.D{{Key: "subscribedAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscribers: %w", err)
	}
	var docs []subscriberDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode subscribers: %w", err)
	}
	out := make([]*domain.Subscriber, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

func (r *SubscriberRepository) Emails(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"email": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("list subscriber emails: %w", err)
	}
	var docs []subscriberDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode subscriber emails: %w", err)
	}
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Email)
	}
	return out, nil
}

func (r *SubscriberRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *SubscriberRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
