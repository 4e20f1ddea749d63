// Package kernel assembles the HTTP handler of the storefront.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Router builds the route table of a booted application.
//
// Global middleware, outermost first:
//  1. metrics, so latency covers everything below
//  2. recovery
//  3. request id, before anything logs
//  4. request logger
func Router(a *app.App) (*router.Router, error) {
	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)

	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", health(a))

	schema, err := graphql.NewSchema(a.Services.Products, a.Services.Reviews)
	if err != nil {
		return nil, err
	}
	r.Post("/graphql", "graphql", graphql.Handler(schema))

	if local, ok := a.Disk.(*storage.LocalDisk); ok {
		r.Handle("/uploads/*", "uploads", http.FileServer(http.Dir(local.Root())))
	}

	routes.RegisterAPI(r, a.Services, a.Sessions)
	return r, nil
}

// Handler is Router(a).Handler().
func Handler(a *app.App) (http.Handler, error) {
	r, err := Router(a)
	if err != nil {
		return nil, err
	}
	return r.Handler(), nil
}

func health(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Ping(ctx); err != nil {
			logger.WithCtx(ctx).Error("health check failed", "error", err)
			response.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		response.Success(w, map[string]string{"status": "ok"})
	}
}
