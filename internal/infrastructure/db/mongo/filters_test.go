package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

func TestProductFilter(t *testing.T) {
	minPrice, maxPrice, featured := 100.0, 500.0, true

	got := productFilter(ports.ProductFilter{
		Category: "mugs",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Featured: &featured,
		Search:   "photo (mug)",
	})

	if got["isActive"] != true {
		t.Fatalf("public listing must filter on isActive, got %v", got)
	}
	if got["category"] != "mugs" || got["isFeatured"] != true {
		t.Fatalf("unexpected filter: %v", got)
	}
	price := got["basePrice"].(bson.M)
	if price["$gte"] != 100.0 || price["$lte"] != 500.0 {
		t.Fatalf("unexpected price range: %v", price)
	}
	or := got["$or"].(bson.A)
	rx := or[0].(bson.M)["title"].(primitive.Regex)
	if rx.Pattern != `photo \(mug\)` || rx.Options != "i" {
		t.Fatalf("search must be quoted and case-insensitive, got %+v", rx)
	}
}

func TestProductFilter_AdminSeesInactive(t *testing.T) {
	got := productFilter(ports.ProductFilter{IncludeInactive: true})
	if len(got) != 0 {
		t.Fatalf("expected empty filter, got %v", got)
	}
}

func TestProductSort(t *testing.T) {
	cases := map[string]string{
		"":                  "createdAt",
		ports.SortNewest:    "createdAt",
		ports.SortPriceAsc:  "basePrice",
		ports.SortPriceDesc: "basePrice",
	}
	for in, key := range cases {
		if got := productSort(in); got[0].Key != key {
			t.Fatalf("productSort(%q) sorts by %s, want %s", in, got[0].Key, key)
		}
	}
	if productSort(ports.SortPriceDesc)[0].Value != -1 {
		t.Fatalf("price_desc must sort descending")
	}
}

func TestArtworkFilter(t *testing.T) {
	viewer := primitive.NewObjectID()

	got := artworkFilter(ports.ListArtworksFilter{Viewer: ports.Viewer{UserID: viewer.Hex(), Role: domain.RoleCustomer}})
	or, ok := got["$or"].(bson.A)
	if !ok || len(or) != 2 || or[1].(bson.M)["uploadedBy"] != viewer {
		t.Fatalf("customers must be scoped to predefined and own artworks, got %v", got)
	}

	predefined := true
	got = artworkFilter(ports.ListArtworksFilter{Viewer: ports.Viewer{Role: domain.RoleAdmin}, Predefined: &predefined})
	if _, scoped := got["$or"]; scoped || got["isPredefined"] != true {
		t.Fatalf("admins see everything, got %v", got)
	}
}

func TestUserFilter(t *testing.T) {
	got := userFilter(ports.ListUsersFilter{Role: domain.RoleAdmin, Search: "a+b"})
	if got["role"] != domain.RoleAdmin {
		t.Fatalf("unexpected filter: %v", got)
	}
	rx := got["$or"].(bson.A)[1].(bson.M)["email"].(primitive.Regex)
	if rx.Pattern != `a\+b` {
		t.Fatalf("unexpected regex: %v", rx.Pattern)
	}
}

func TestOrderDocRoundTrip_KeepsSnapshot(t *testing.T) {
	userID, productID := primitive.NewObjectID(), primitive.NewObjectID()
	order := &domain.Order{
		UserID: userID.Hex(),
		Items: []domain.OrderItem{{
			ProductID: productID.Hex(),
			VariantID: "v1",
			Name:      "Photo Mug",
			Price:     349,
			Quantity:  2,
			Variant:   &domain.VariantSnapshot{Color: "black", Price: 349},
		}},
		TotalAmount: 698,
		Status:      domain.StatusPending,
		PaymentInfo: domain.PaymentInfo{Method: domain.PaymentCOD, Amount: 698, Currency: "INR"},
	}

	doc, err := toOrderDoc(order)
	if err != nil {
		t.Fatalf("toOrderDoc returned error: %v", err)
	}
	if doc.PaymentInfo.PaymentID != "" {
		t.Fatalf("COD orders must not carry a payment id")
	}
	back := doc.toDomain()
	if back.UserID != order.UserID || back.Items[0].ProductID != productID.Hex() || back.Items[0].Variant.Color != "black" {
		t.Fatalf("unexpected round trip: %+v", back)
	}

	if _, err := toOrderDoc(&domain.Order{UserID: "nope"}); err == nil {
		t.Fatalf("expected malformed user id to be rejected")
	}
}

func TestPipelines(t *testing.T) {
	if len(topProductsPipeline(5)) != 4 {
		t.Fatalf("unexpected top products pipeline")
	}
	if stage := monthlyRevenuePipeline(domainEpoch)[0][0]; stage.Key != "$match" {
		t.Fatalf("monthly revenue must filter by date first, got %s", stage.Key)
	}
}
