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

const collectionProducts = "products"

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type variantDoc struct {
	ID       string  `bson:"id"`
	Size     string  `bson:"size,omitempty"`
	Color    string  `bson:"color,omitempty"`
	Material string  `bson:"material,omitempty"`
	Price    float64 `bson:"price"`
	Stock    int     `bson:"stock"`
}

type productDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Slug         string             `bson:"slug"`
	Description  string             `bson:"description"`
	BasePrice    float64            `bson:"basePrice"`
	Category     string             `bson:"category"`
	Variants     []variantDoc       `bson:"variants"`
	Media        []mediaDoc         `bson:"media"`
	CODAvailable bool               `bson:"codAvailable"`
	Customizable bool               `bson:"customizable"`
	IsFeatured   bool               `bson:"isFeatured"`
	IsActive     bool               `bson:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func toProductDoc(p *domain.Product) productDoc {
	variants := make([]variantDoc, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, variantDoc(v))
	}
	return productDoc{
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		BasePrice:    p.BasePrice,
		Category:     p.Category,
		Variants:     variants,
		Media:        toMediaDocs(p.Media),
		CODAvailable: p.CODAvailable,
		Customizable: p.Customizable,
		IsFeatured:   p.IsFeatured,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d *productDoc) toDomain() *domain.Product {
	variants := make([]domain.Variant, 0, len(d.Variants))
	for _, v := range d.Variants {
		variants = append(variants, domain.Variant(v))
	}
	return &domain.Product{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Slug:         d.Slug,
		Description:  d.Description,
		BasePrice:    d.BasePrice,
		Category:     d.Category,
		Variants:     variants,
		Media:        fromMediaDocs(d.Media),
		CODAvailable: d.CODAvailable,
		Customizable: d.Customizable,
		IsFeatured:   d.IsFeatured,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

var errSlugTaken = fmt.Errorf("%w: slug already in use", domain.ErrInvalidInput)

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toProductDoc(p)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errSlugTaken
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// FindByID treats malformed ids as not found so callers can fall back to a
// slug lookup.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	out := make(map[string]*domain.Product, len(ids))
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for i := range docs {
		p := docs[i].toDomain()
		out[p.ID] = p
	}
	return out, nil
}

// Update never rewrites the media array as a whole: dropped items are pulled
// and new ones pushed, so a positional swap by a running migration survives.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product, media ports.MediaEdit) (*domain.Product, error) {
	oid, ok := objectID(p.ID)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toProductDoc(p)
	fields := bson.M{
		"title":        doc.Title,
		"slug":         doc.Slug,
		"description":  doc.Description,
		"basePrice":    doc.BasePrice,
		"category":     doc.Category,
		"variants":     doc.Variants,
		"codAvailable": doc.CODAvailable,
		"customizable": doc.Customizable,
		"isFeatured":   doc.IsFeatured,
		"isActive":     doc.IsActive,
		"updatedAt":    doc.UpdatedAt,
	}
	update := bson.M{"$set": fields}
	if len(media.Drop) > 0 {
		update["$pull"] = bson.M{"media": bson.M{"url": bson.M{"$in": media.Drop}}}
	}

	updated, err := r.findAndUpdate(ctx, oid, update)
	if err != nil || len(media.Add) == 0 {
		return updated, err
	}
	// $pull and $push cannot target the same array in one update.
	return r.findAndUpdate(ctx, oid, bson.M{"$push": bson.M{"media": bson.M{"$each": toMediaDocs(media.Add)}}})
}

func (r *ProductRepository) findAndUpdate(ctx context.Context, oid primitive.ObjectID, update bson.M) (*domain.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrProductNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, errSlugTaken
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return doc.toDomain(), nil
}

// productFilter translates a listing query into a Mongo filter.
func productFilter(f ports.ProductFilter) bson.M {
	filter := bson.M{}
	if !f.IncludeInactive {
		filter["isActive"] = true
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["basePrice"] = price
	}
	if f.Featured != nil {
		filter["isFeatured"] = *f.Featured
	}
	if f.Search != "" {
		rx := containsRegex(f.Search)
		filter["$or"] = bson.A{bson.M{"title": rx}, bson.M{"description": rx}}
	}
	return filter
}

func productSort(sort string) bson.D {
	switch sort {
	case ports.SortPriceAsc:
		return bson.D{{Key: "basePrice", Value: 1}, {Key: "_id", Value: 1}}
	case ports.SortPriceDesc:
		return bson.D{{Key: "basePrice", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return newestFirst()
	}
}

func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := productFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	cur, err := r.col.Find(ctx, filter, pageOptions(f.Page, f.Limit).SetSort(productSort(f.Sort)))
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	out := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, total, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

// ReplaceMedia swaps a staged media item for its hosted copy in place.
func (r *ProductRepository) ReplaceMedia(ctx context.Context, ownerID, localURL string, hosted domain.Media) error {
	return replaceMedia(ctx, r.col, ownerID, localURL, hosted, domain.ErrProductNotFound)
}

// replaceMedia uses the positional operator so concurrent edits to other
// fields of the document are preserved.
func replaceMedia(ctx context.Context, col *mongo.Collection, ownerID, localURL string, hosted domain.Media, notFound error) error {
	oid, ok := objectID(ownerID)
	if !ok {
		return fmt.Errorf("%w: %w: invalid id %q", notFound, domain.ErrMediaDetached, ownerID)
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": oid, "media.url": localURL},
		bson.M{"$set": bson.M{"media.$": mediaDoc(hosted), "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("replace media: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %w: %s no longer references %s", notFound, domain.ErrMediaDetached, ownerID, localURL)
	}
	return nil
}

// EnsureIndexes creates the unique slug index and the listing indexes.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "basePrice", Value: 1}}},
		{Keys: bson.D{{Key: "isFeatured", Value: 1}}},
	})
	return err
}
