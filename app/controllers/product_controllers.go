package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type ProductController struct {
	products *services.ProductService
	reviews  *services.ReviewService
}

func NewProductController(svc *services.Services) *ProductController {
	return &ProductController{products: svc.Products, reviews: svc.Reviews}
}

func (pc *ProductController) Index(c *ctx.Context) {
	products, err := pc.products.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"products": products, "count": len(products)})
}

func (pc *ProductController) Show(c *ctx.Context) {
	product, err := pc.products.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"product": product})
}

func (pc *ProductController) Store(c *ctx.Context) {
	var in services.CreateProductInput
	if !c.BindJSON(&in) {
		return
	}
	product, err := pc.products.Create(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]any{"product": product})
}

func (pc *ProductController) Update(c *ctx.Context) {
	var in services.UpdateProductInput
	if !c.BindJSON(&in) {
		return
	}
	product, err := pc.products.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"product": product})
}

func (pc *ProductController) Destroy(c *ctx.Context) {
	if err := pc.products.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"msg": "Success! Product removed."})
}

// UploadImage accepts a multipart form with the file in field "image". The
// route caps the body size.
func (pc *ProductController) UploadImage(c *ctx.Context) {
	file, header, err := c.R.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			c.Fail(apperr.New(apperr.BadRequest, "Please upload image smaller than 1MB"))
		default:
			c.Fail(apperr.New(apperr.BadRequest, "No file uploaded"))
		}
		return
	}
	defer file.Close()

	src, err := pc.products.UploadImage(c.Context(), header.Filename, file)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"image": map[string]string{"src": src}})
}

// Reviews lists the reviews of one product.
func (pc *ProductController) Reviews(c *ctx.Context) {
	reviews, err := pc.reviews.ListForProduct(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"reviews": reviews, "count": len(reviews)})
}
