package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gosimple/slug"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// MaxImageBytes caps uploaded product images.
const MaxImageBytes = 1 << 20

type CreateProductInput struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Description  string   `json:"description" validate:"required,max=1000"`
	Image        string   `json:"image"`
	Category     string   `json:"category" validate:"required,oneof=office kitchen bedroom"`
	Company      string   `json:"company" validate:"required,oneof=ikea liddy marcos"`
	Colors       []string `json:"colors"`
	Featured     bool     `json:"featured"`
	FreeShipping bool     `json:"freeShipping"`
	Inventory    *int     `json:"inventory" validate:"omitempty,gte=0"`
}

// UpdateProductInput is a partial update: absent fields keep their value.
type UpdateProductInput struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	Description  *string  `json:"description" validate:"omitempty,min=1,max=1000"`
	Image        *string  `json:"image"`
	Category     *string  `json:"category" validate:"omitempty,oneof=office kitchen bedroom"`
	Company      *string  `json:"company" validate:"omitempty,oneof=ikea liddy marcos"`
	Colors       []string `json:"colors"`
	Featured     *bool    `json:"featured"`
	FreeShipping *bool    `json:"freeShipping"`
	Inventory    *int     `json:"inventory" validate:"omitempty,gte=0"`
}

func (in UpdateProductInput) patch() models.ProductPatch {
	return models.ProductPatch{
		Name:         in.Name,
		Price:        in.Price,
		Description:  in.Description,
		Image:        in.Image,
		Category:     in.Category,
		Company:      in.Company,
		Colors:       in.Colors,
		Featured:     in.Featured,
		FreeShipping: in.FreeShipping,
		Inventory:    in.Inventory,
	}
}

type ProductService struct {
	products repositories.Products
	reviews  repositories.Reviews
	disk     storage.Disk
	events   *event.Dispatcher
}

// List returns the whole catalog. It is public.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, internal(err, "list products")
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	oid, err := repositories.ParseID(id)
	if err != nil {
		return nil, apperr.NotFoundf("No product with id: %s", id)
	}
	p, err := s.products.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound(err, "No product with id: %s", id)
	}
	return p, nil
}

// Create stores a new product owned by the calling admin. The rating
// starts empty whatever the client sent.
func (s *ProductService) Create(ctx context.Context, p auth.Principal, in CreateProductInput) (*models.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	uid, err := principalID(p)
	if err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:         in.Name,
		Price:        *in.Price,
		Description:  in.Description,
		Image:        in.Image,
		Category:     in.Category,
		Company:      in.Company,
		Colors:       in.Colors,
		Featured:     in.Featured,
		FreeShipping: in.FreeShipping,
		Inventory:    models.DefaultInventory,
		UserID:       uid,
	}
	if prod.Image == "" {
		prod.Image = models.DefaultProductImage
	}
	if len(prod.Colors) == 0 {
		prod.Colors = append([]string(nil), models.DefaultColors...)
	}
	if in.Inventory != nil {
		prod.Inventory = *in.Inventory
	}

	if err := s.products.Create(ctx, prod); err != nil {
		return nil, internal(err, "Unable to store product")
	}
	logger.WithCtx(ctx).Info("product created", "product_id", prod.ID.Hex())
	return prod, nil
}

func (s *ProductService) Update(ctx context.Context, id string, in UpdateProductInput) (*models.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	prod, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.patch().Apply(prod)
	if err := s.products.Update(ctx, prod); err != nil {
		return nil, notFound(err, "No product with id: %s", id)
	}
	return prod, nil
}

// Delete removes the product's reviews first, then the product. A failure
// between the two leaves the product in place with fewer reviews, which
// the next aggregation corrects.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	prod, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.reviews.DeleteByProduct(ctx, prod.ID)
	if err != nil {
		return internal(err, "delete reviews of product %s", id)
	}
	if err := s.products.Delete(ctx, prod.ID); err != nil {
		return notFound(err, "No product with id: %s", id)
	}
	logger.WithCtx(ctx).Info("product deleted", "product_id", id, "reviews_removed", n)
	s.events.Fire(ctx, event.ProductDeleted, prod)
	return nil
}

// UploadImage stores an image under uploads/ and returns its public URL.
// The file name is slugified; uploading the same name twice replaces the
// earlier file.
func (s *ProductService) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	if s.disk == nil {
		return "", apperr.New(apperr.Internal, "Image storage is not configured")
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", apperr.Wrap(apperr.BadRequest, err, "Unable to read upload")
	}
	if len(data) == 0 {
		return "", apperr.New(apperr.BadRequest, "No file uploaded")
	}
	if len(data) > MaxImageBytes {
		return "", apperr.New(apperr.BadRequest, "Please upload image smaller than 1MB")
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperr.New(apperr.BadRequest, "Please upload image")
	}

	name := imageName(filename)
	key := path.Join("uploads", name)
	if err := s.disk.Put(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", internal(err, "store image")
	}
	return s.disk.URL(key), nil
}

// imageName slugifies the base name and keeps the lowercased extension.
func imageName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	stem := slug.Make(strings.TrimSuffix(base, path.Ext(base)))
	if stem == "" {
		stem = "image"
	}
	return stem + ext
}
