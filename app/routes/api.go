// Package routes declares the REST surface under /api/v1.
package routes

import (
	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// uploadLimit leaves room for the multipart envelope around a full-size image.
const uploadLimit = services.MaxImageBytes + 64<<10

func RegisterAPI(r *router.Router, svc *services.Services, sessions *auth.Sessions) {
	authCtl := controllers.NewAuthController(svc, sessions)
	userCtl := controllers.NewUserController(svc, sessions)
	productCtl := controllers.NewProductController(svc)
	reviewCtl := controllers.NewReviewController(svc)
	orderCtl := controllers.NewOrderController(svc)

	authenticated := middleware.Authenticate(sessions)
	admin := rbac.HasRole(auth.RoleAdmin)

	api := r.Group("/api/v1")

	a := api.Group("/auth")
	a.Post("/register", "auth.register", ctx.Wrap(authCtl.Register))
	a.Post("/login", "auth.login", ctx.Wrap(authCtl.Login))
	a.Get("/logout", "auth.logout", ctx.Wrap(authCtl.Logout))

	users := api.Group("/users", authenticated)
	users.Get("/", "users.index", ctx.Wrap(userCtl.Index), admin)
	users.Get("/showMe", "users.me", ctx.Wrap(userCtl.ShowMe))
	users.Patch("/updateUser", "users.update", ctx.Wrap(userCtl.Update))
	users.Patch("/updateUserPassword", "users.password", ctx.Wrap(userCtl.UpdatePassword))
	users.Get("/{id}", "users.show", ctx.Wrap(userCtl.Show))

	products := api.Group("/products")
	products.Get("/", "products.index", ctx.Wrap(productCtl.Index))
	products.Get("/{id}", "products.show", ctx.Wrap(productCtl.Show))
	products.Get("/{id}/reviews", "products.reviews", ctx.Wrap(productCtl.Reviews))
	manage := products.Group("", authenticated, admin)
	manage.Post("/", "products.store", ctx.Wrap(productCtl.Store))
	manage.Post("/uploadImage", "products.upload", ctx.Wrap(productCtl.UploadImage), middleware.LimitBody(uploadLimit))
	manage.Patch("/{id}", "products.update", ctx.Wrap(productCtl.Update))
	manage.Delete("/{id}", "products.destroy", ctx.Wrap(productCtl.Destroy))

	reviews := api.Group("/reviews")
	reviews.Get("/", "reviews.index", ctx.Wrap(reviewCtl.Index))
	reviews.Get("/{id}", "reviews.show", ctx.Wrap(reviewCtl.Show))
	mine := reviews.Group("", authenticated)
	mine.Post("/", "reviews.store", ctx.Wrap(reviewCtl.Store))
	mine.Patch("/{id}", "reviews.update", ctx.Wrap(reviewCtl.Update))
	mine.Delete("/{id}", "reviews.destroy", ctx.Wrap(reviewCtl.Destroy))

	orders := api.Group("/orders", authenticated)
	orders.Get("/", "orders.index", ctx.Wrap(orderCtl.Index), admin)
	orders.Post("/", "orders.store", ctx.Wrap(orderCtl.Store))
	orders.Get("/showAllMyOrders", "orders.mine", ctx.Wrap(orderCtl.Mine))
	orders.Get("/{id}", "orders.show", ctx.Wrap(orderCtl.Show))
	orders.Patch("/{id}", "orders.update", ctx.Wrap(orderCtl.Update))
}
