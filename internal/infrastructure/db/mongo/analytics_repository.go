package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// AnalyticsRepository runs dashboard aggregation pipelines over orders.
type AnalyticsRepository struct {
	orders *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{orders: db.Collection(collectionOrders)}
}

func (r *AnalyticsRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func summaryPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalOrders", Value: bson.M{"$sum": 1}},
			{Key: "totalRevenue", Value: bson.M{"$sum": "$totalAmount"}},
			{Key: "paidRevenue", Value: bson.M{"$sum": bson.M{
				"$cond": bson.A{"$paymentInfo.paid", "$totalAmount", 0},
			}}},
		}}},
	}
}

func (r *AnalyticsRepository) OrderSummary(ctx context.Context) (ports.OrderSummary, error) {
	var rows []struct {
		TotalOrders  int64   `bson:"totalOrders"`
		TotalRevenue float64 `bson:"totalRevenue"`
		PaidRevenue  float64 `bson:"paidRevenue"`
	}
	if err := r.aggregate(ctx, summaryPipeline(), &rows); err != nil {
		return ports.OrderSummary{}, fmt.Errorf("order summary: %w", err)
	}
	if len(rows) == 0 {
		return ports.OrderSummary{}, nil
	}
	return ports.OrderSummary(rows[0]), nil
}

func (r *AnalyticsRepository) OrdersByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.M{"$sum": 1}},
		}}},
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("orders by status: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func topProductsPipeline(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$items.productId"},
			{Key: "name", Value: bson.M{"$last": "$items.name"}},
			{Key: "quantity", Value: bson.M{"$sum": "$items.quantity"}},
			{Key: "revenue", Value: bson.M{"$sum": bson.M{"$multiply": bson.A{"$items.price", "$items.quantity"}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "quantity", Value: -1}, {Key: "revenue", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
}

func (r *AnalyticsRepository) TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error) {
	var rows []struct {
		ProductID primitive.ObjectID `bson:"_id"`
		Name      string             `bson:"name"`
		Quantity  int64              `bson:"quantity"`
		Revenue   float64            `bson:"revenue"`
	}
	if err := r.aggregate(ctx, topProductsPipeline(limit), &rows); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	out := make([]domain.TopProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.TopProduct{
			ProductID: hexOrEmpty(row.ProductID),
			Name:      row.Name,
			Quantity:  row.Quantity,
			Revenue:   row.Revenue,
		})
	}
	return out, nil
}

func monthlyRevenuePipeline(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$createdAt"}}},
			{Key: "orders", Value: bson.M{"$sum": 1}},
			{Key: "revenue", Value: bson.M{"$sum": "$totalAmount"}},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

func (r *AnalyticsRepository) MonthlyRevenue(ctx context.Context, since time.Time) ([]domain.MonthlyRevenue, error) {
	var rows []struct {
		Month   string  `bson:"_id"`
		Orders  int64   `bson:"orders"`
		Revenue float64 `bson:"revenue"`
	}
	if err := r.aggregate(ctx, monthlyRevenuePipeline(since), &rows); err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	out := make([]domain.MonthlyRevenue, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.MonthlyRevenue(row))
	}
	return out, nil
}
