// Package graphql exposes a read-only view of the catalog over GraphQL.
//
// Supported queries:
//
//	{ products { id name price averageRating } }
//	{ product(id: "...") { name reviews { rating title } } }
//	{ reviews(productId: "...") { rating title comment } }
package graphql

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Catalog is the product source of the schema.
type Catalog interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
}

// Reviews is the review source of the schema.
type Reviews interface {
	ListForProduct(ctx context.Context, productID string) ([]models.Review, error)
}

// NewSchema builds the schema over the given sources.
func NewSchema(catalog Catalog, reviews Reviews) (graphql.Schema, error) {
	reviewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String, Resolve: reviewField(func(r models.Review) interface{} { return r.ID.Hex() })},
			"rating":    &graphql.Field{Type: graphql.Int},
			"title":     &graphql.Field{Type: graphql.String},
			"comment":   &graphql.Field{Type: graphql.String},
			"user":      &graphql.Field{Type: graphql.String, Resolve: reviewField(func(r models.Review) interface{} { return r.UserID.Hex() })},
			"product":   &graphql.Field{Type: graphql.String, Resolve: reviewField(func(r models.Review) interface{} { return r.ProductID.Hex() })},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String, Resolve: productField(func(p models.Product) interface{} { return p.ID.Hex() })},
			"name":          &graphql.Field{Type: graphql.String},
			"price":         &graphql.Field{Type: graphql.Float},
			"description":   &graphql.Field{Type: graphql.String},
			"image":         &graphql.Field{Type: graphql.String},
			"category":      &graphql.Field{Type: graphql.String},
			"company":       &graphql.Field{Type: graphql.String},
			"colors":        &graphql.Field{Type: graphql.NewList(graphql.String)},
			"featured":      &graphql.Field{Type: graphql.Boolean},
			"freeShipping":  &graphql.Field{Type: graphql.Boolean},
			"inventory":     &graphql.Field{Type: graphql.Int},
			"averageRating": &graphql.Field{Type: graphql.Float},
			"numOfReviews":  &graphql.Field{Type: graphql.Int},
			"reviews": &graphql.Field{
				Type: graphql.NewList(reviewType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					prod, ok := asProduct(p.Source)
					if !ok {
						return nil, nil
					}
					list, err := reviews.ListForProduct(p.Context, prod.ID.Hex())
					return list, public(p.Context, err)
				},
			},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := catalog.List(p.Context)
					return list, public(p.Context, err)
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					prod, err := catalog.Get(p.Context, id)
					if err != nil {
						return nil, public(p.Context, err)
					}
					return prod, nil
				},
			},
			"reviews": &graphql.Field{
				Type: graphql.NewList(reviewType),
				Args: graphql.FieldConfigArgument{
					"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["productId"].(string)
					list, err := reviews.ListForProduct(p.Context, id)
					return list, public(p.Context, err)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

func asProduct(src interface{}) (models.Product, bool) {
	switch v := src.(type) {
	case models.Product:
		return v, true
	case *models.Product:
		if v != nil {
			return *v, true
		}
	}
	return models.Product{}, false
}

func asReview(src interface{}) (models.Review, bool) {
	switch v := src.(type) {
	case models.Review:
		return v, true
	case *models.Review:
		if v != nil {
			return *v, true
		}
	}
	return models.Review{}, false
}

func productField(get func(models.Product) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if prod, ok := asProduct(p.Source); ok {
			return get(prod), nil
		}
		return nil, nil
	}
}

func reviewField(get func(models.Review) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if r, ok := asReview(p.Source); ok {
			return get(r), nil
		}
		return nil, nil
	}
}

// public strips internal detail from resolver errors.
func public(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var e *apperr.Error
	if errors.As(err, &e) && e.Kind != apperr.Internal {
		return errors.New(e.Message)
	}
	logger.WithCtx(ctx).Error("graphql resolver failed", "error", err)
	return errors.New("internal error")
}
