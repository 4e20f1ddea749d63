package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type ReviewController struct {
	reviews *services.ReviewService
}

func NewReviewController(svc *services.Services) *ReviewController {
	return &ReviewController{reviews: svc.Reviews}
}

func (rc *ReviewController) Index(c *ctx.Context) {
	reviews, err := rc.reviews.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"reviews": reviews, "count": len(reviews)})
}

func (rc *ReviewController) Show(c *ctx.Context) {
	review, err := rc.reviews.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"review": review})
}

func (rc *ReviewController) Store(c *ctx.Context) {
	var in services.CreateReviewInput
	if !c.BindJSON(&in) {
		return
	}
	review, err := rc.reviews.Create(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]any{"review": review})
}

func (rc *ReviewController) Update(c *ctx.Context) {
	var in services.UpdateReviewInput
	if !c.BindJSON(&in) {
		return
	}
	review, err := rc.reviews.Update(c.Context(), c.Principal(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"review": review})
}

func (rc *ReviewController) Destroy(c *ctx.Context) {
	if err := rc.reviews.Delete(c.Context(), c.Principal(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"msg": "Delete Successful"})
}
