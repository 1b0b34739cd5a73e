package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/printcraft/storefront/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI).SetAppName("storefront"))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Ping is used by the readiness probe.
func Ping(ctx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client.Ping(ctx, nil)
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates the indexes of every collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, r := range map[string]indexer{
		collectionUsers:       NewUserRepository(db),
		collectionProducts:    NewProductRepository(db),
		collectionOrders:      NewOrderRepository(db),
		collectionArtworks:    NewArtworkRepository(db),
		collectionSubscribers: NewSubscriberRepository(db),
	} {
		if err := r.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}

// objectID parses a hex id. Malformed ids are reported as not found by callers.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			out = append(out, oid)
		}
	}
	return out
}

// hexOrEmpty renders optional references.
func hexOrEmpty(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

// pageOptions applies 1-based paging to a find.
func pageOptions(page, limit int) *options.FindOptions {
	return options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
}

// containsRegex matches s anywhere, case-insensitively, with metacharacters quoted.
func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func newestFirst() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

type mediaDoc struct {
	URL      string `bson:"url"`
	Type     string `bson:"type"`
	PublicID string `bson:"publicId,omitempty"`
}

func toMediaDocs(media []domain.Media) []mediaDoc {
	out := make([]mediaDoc, 0, len(media))
	for _, m := range media {
		out = append(out, mediaDoc(m))
	}
	return out
}

func fromMediaDocs(docs []mediaDoc) []domain.Media {
	out := make([]domain.Media, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Media(d))
	}
	return out
}

type addressDoc struct {
	Line1      string `bson:"line1,omitempty"`
	Line2      string `bson:"line2,omitempty"`
	City       string `bson:"city,omitempty"`
	State      string `bson:"state,omitempty"`
	PostalCode string `bson:"postalCode,omitempty"`
	Country    string `bson:"country,omitempty"`
}
