package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/boddenberg/loanhub/internal/catalog"
	"github.com/boddenberg/loanhub/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// ProductStore implementation
// ============================================================

// productDoc maps the products collection.
type productDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	domain.LoanProduct `bson:",inline"`
}

func (d productDoc) toDomain() domain.LoanProduct {
	p := d.LoanProduct
	p.ID = d.ID.Hex()
	return p
}

// buildFilter translates catalog criteria into a query with the same
// semantics as catalog.Matches.
func buildFilter(c catalog.Criteria) bson.D {
	filter := bson.D{}
	if c.Type != "" {
		filter = append(filter, bson.E{Key: "type", Value: string(c.Type)})
	}
	if c.Company != "" {
		filter = append(filter, bson.E{Key: "company", Value: substringRegex(c.Company)})
	}
	if c.MinAmountFloor != nil {
		filter = append(filter, bson.E{Key: "minAmount", Value: bson.D{{Key: "$gte", Value: *c.MinAmountFloor}}})
	}
	if c.MaxAmountCeiling != nil {
		filter = append(filter, bson.E{Key: "maxAmount", Value: bson.D{{Key: "$lte", Value: *c.MaxAmountCeiling}}})
	}
	if c.Search != "" {
		re := substringRegex(c.Search)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: re}},
			bson.D{{Key: "company", Value: re}},
		}})
	}
	return filter
}

// substringRegex matches s literally anywhere, ignoring case.
func substringRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// insertionOrder reads products in the order they were seeded. ObjectIDs
// from one InsertMany increase monotonically, so catalog.Sort then breaks
// ties exactly like the memory store.
var insertionOrder = bson.D{{Key: "_id", Value: 1}}

func (s *Store) ListProducts(ctx context.Context, c catalog.Criteria) ([]domain.LoanProduct, error) {
	ctx, span := tracer.Start(ctx, "MongoStore.ListProducts")
	defer span.End()

	var products []domain.LoanProduct
	err := s.run(ctx, "products.find", func(ctx context.Context) error {
		cur, err := s.products.Find(ctx, buildFilter(c), options.Find().SetSort(insertionOrder))
		if err != nil {
			return err
		}
		var docs []productDoc
		if err := cur.All(ctx, &docs); err != nil {
			return fmt.Errorf("decode products: %w", err)
		}
		products = make([]domain.LoanProduct, 0, len(docs))
		for _, d := range docs {
			products = append(products, d.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	catalog.Sort(products, c.Sort)
	span.SetAttributes(attribute.Int("products.count", len(products)))
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.LoanProduct, error) {
	ctx, span := tracer.Start(ctx, "MongoStore.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &domain.ErrNotFound{Resource: "product", ID: id}
	}

	var doc productDoc
	err = s.run(ctx, "products.findOne", func(ctx context.Context) error {
		err := s.products.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.ErrNotFound{Resource: "product", ID: id}
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	p := doc.toDomain()
	return &p, nil
}

func (s *Store) ReplaceAll(ctx context.Context, products []domain.LoanProduct) (int, error) {
	ctx, span := tracer.Start(ctx, "MongoStore.ReplaceAll")
	defer span.End()

	now := time.Now().UTC()
	docs := make([]any, len(products))
	for i, p := range products {
		p.ID = ""
		if p.ProcessingFee == "" {
			p.ProcessingFee = "Varies"
		}
		p.CreatedAt, p.UpdatedAt = now, now
		docs[i] = productDoc{LoanProduct: p}
	}

	var inserted int
	err := s.run(ctx, "products.replace", func(ctx context.Context) error {
		if _, err := s.products.DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("delete products: %w", err)
		}
		if len(docs) == 0 {
			inserted = 0
			return nil
		}
		res, err := s.products.InsertMany(ctx, docs)
		if err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
		inserted = len(res.InsertedIDs)
		return nil
	})
	return inserted, err
}
