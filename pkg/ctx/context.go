// Package ctx provides the request context handed to controller actions.
//
// An action receives a single *Context instead of (w, r):
//
//	func (pc *ProductController) Show(c *ctx.Context) {
//		product, err := pc.products.Get(c.Context(), c.Param("id"))
//		if err != nil {
//			c.Fail(err)
//			return
//		}
//		c.Success(map[string]any{"product": product})
//	}
//
// and is registered with ctx.Wrap.
package ctx

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// HandlerFunc is the signature of a controller action.
type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps one request/response pair.
type Context struct {
	W       http.ResponseWriter
	R       *http.Request
	written bool
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.written = w, r, false
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

// Param returns a URL path parameter.
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

// Query returns a query-string value, or "".
func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Principal returns the authenticated identity. Routes behind the auth
// middleware always have one.
func (c *Context) Principal() auth.Principal {
	p, _ := auth.FromContext(c.R.Context())
	return p
}

// BindJSON decodes and validates the body into dest. On failure it writes
// a 400 or 422 response and returns false; the action must return.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if bind.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

func (c *Context) mark() bool {
	if c.written {
		return false
	}
	c.written = true
	return true
}

// Written reports whether a response has been sent.
func (c *Context) Written() bool { return c.written }

func (c *Context) Success(data any) {
	if c.mark() {
		response.Success(c.W, data)
	}
}

func (c *Context) Created(data any) {
	if c.mark() {
		response.Created(c.W, data)
	}
}

func (c *Context) Error(code int, message string) {
	if c.mark() {
		response.Error(c.W, code, message)
	}
}

func (c *Context) ValidationError(errs map[string]string) {
	if c.mark() {
		response.ValidationError(c.W, errs)
	}
}

// Fail renders err through the shared error mapping.
func (c *Context) Fail(err error) {
	if c.mark() {
		response.Fail(c.Context(), c.W, err)
	}
}
