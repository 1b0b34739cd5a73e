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

const collectionArtworks = "artworks"

type ArtworkRepository struct {
	col *mongo.Collection
}

func NewArtworkRepository(db *mongo.Database) *ArtworkRepository {
	return &ArtworkRepository{col: db.Collection(collectionArtworks)}
}

type artworkDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description,omitempty"`
	Media        []mediaDoc         `bson:"media"`
	UploadedBy   primitive.ObjectID `bson:"uploadedBy"`
	IsPredefined bool               `bson:"isPredefined"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *artworkDoc) toDomain() *domain.Artwork {
	return &domain.Artwork{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Media:        fromMediaDocs(d.Media),
		UploadedBy:   hexOrEmpty(d.UploadedBy),
		IsPredefined: d.IsPredefined,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *ArtworkRepository) Create(ctx context.Context, a *domain.Artwork) (*domain.Artwork, error) {
	uploader, ok := objectID(a.UploadedBy)
	if !ok {
		return nil, fmt.Errorf("%w: malformed uploader id %q", domain.ErrInvalidInput, a.UploadedBy)
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := artworkDoc{
		Title:        a.Title,
		Description:  a.Description,
		Media:        toMediaDocs(a.Media),
		UploadedBy:   uploader,
		IsPredefined: a.IsPredefined,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert artwork: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *ArtworkRepository) FindByID(ctx context.Context, id string) (*domain.Artwork, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrArtworkNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc artworkDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrArtworkNotFound
		}
		return nil, fmt.Errorf("find artwork: %w", err)
	}
	return doc.toDomain(), nil
}

// artworkFilter limits non-admin viewers to predefined artworks and their own.
func artworkFilter(f ports.ListArtworksFilter) bson.M {
	filter := bson.M{}
	if f.Predefined != nil {
		filter["isPredefined"] = *f.Predefined
	}
	if !f.Viewer.IsAdmin() {
		viewer, _ := objectID(f.Viewer.UserID)
		filter["$or"] = bson.A{bson.M{"isPredefined": true}, bson.M{"uploadedBy": viewer}}
	}
	return filter
}

func (r *ArtworkRepository) List(ctx context.Context, f ports.ListArtworksFilter) ([]*domain.Artwork, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, artworkFilter(f), options.Find().SetSort(newestFirst()))
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	var docs []artworkDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode artworks: %w", err)
	}
	out := make([]*domain.Artwork, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *ArtworkRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrArtworkNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete artwork: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrArtworkNotFound
	}
	return nil
}

func (r *ArtworkRepository) ReplaceMedia(ctx context.Context, ownerID, localURL string, hosted domain.Media) error {
	return replaceMedia(ctx, r.col, ownerID, localURL, hosted, domain.ErrArtworkNotFound)
}

func (r *ArtworkRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "uploadedBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isPredefined", Value: 1}}},
	})
	return err
}
