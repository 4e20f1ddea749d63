// Package app boots the storefront: it reads config, opens the configured
// drivers and assembles the services.
//
//	a, err := app.Boot(ctx)
//	if err != nil {
//		return err
//	}
//	defer a.Close()
//
// Every command of the CLI starts from a booted App.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/crypt"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/payment"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// App holds the wired dependencies of one process.
type App struct {
	Store    *repositories.Store
	Mongo    *database.Mongo // nil with DB_DRIVER=memory
	Cache    cache.Store
	Disk     storage.Disk
	Events   *event.Dispatcher
	Sessions *auth.Sessions
	Services *services.Services

	closers []func()
}

// Boot opens every driver named by config. On error, anything already
// opened is closed again.
func Boot(ctx context.Context) (_ *App, err error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &App{Events: event.New()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if uri := config.LogMongoURI(); uri != "" {
		flush, err := logger.UseMongo(uri, config.MongoDatabase(), "logs")
		if err != nil {
			return nil, fmt.Errorf("log sink: %w", err)
		}
		a.closers = append(a.closers, flush)
	}

	switch config.DatabaseDriver() {
	case "memory":
		logger.Warn("using the in-memory store; data is lost on exit")
		a.Store = repositories.NewMemoryStore()
	default:
		m, err := database.ConnectDefault(ctx)
		if err != nil {
			return nil, err
		}
		a.Mongo = m
		a.closers = append(a.closers, func() { _ = m.Close() })
		a.Store = repositories.NewMongoStore(m.DB)
	}

	a.Cache = cache.Open(ctx)
	if c, ok := a.Cache.(io.Closer); ok {
		a.closers = append(a.closers, func() { _ = c.Close() })
	}

	if a.Disk, err = storage.Open(ctx); err != nil {
		return nil, err
	}

	a.Sessions = &auth.Sessions{
		Tokens:  auth.DefaultSigner(),
		Cookies: crypt.New(config.CookieSecret()),
		Revoked: a.Cache,
		Secure:  !config.IsLocal(),
	}

	listeners.Register(a.Events)
	a.Services = services.New(services.Deps{
		Store:    a.Store,
		Payment:  payment.Open(),
		Disk:     a.Disk,
		Events:   a.Events,
		Revoker:  a.Sessions,
		Currency: config.PaymentCurrency(),
	})
	return a, nil
}

// EnsureIndexes creates the Mongo indexes. It is a no-op for the memory store.
func (a *App) EnsureIndexes(ctx context.Context) error {
	if a.Mongo == nil {
		return nil
	}
	return repositories.EnsureIndexes(ctx, a.Mongo.DB)
}

// Ping reports whether the backing database answers.
func (a *App) Ping(ctx context.Context) error {
	if a.Mongo == nil {
		return nil
	}
	return a.Mongo.Ping(ctx)
}

// Close releases drivers in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
