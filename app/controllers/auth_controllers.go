// Package controllers binds HTTP requests to the services.
package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type AuthController struct {
	auth     *services.AuthService
	sessions *auth.Sessions
}

func NewAuthController(svc *services.Services, sessions *auth.Sessions) *AuthController {
	return &AuthController{auth: svc.Auth, sessions: sessions}
}

// Register creates an account. It does not log the user in.
func (ac *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := ac.auth.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]any{"user": u})
}

func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := ac.auth.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	p := u.Principal()
	if err := ac.sessions.Attach(c.W, p); err != nil {
		c.Fail(apperr.Wrap(apperr.Internal, err, "issue session"))
		return
	}
	c.Success(map[string]any{"msg": "Login Successful", "user": p})
}

// Logout revokes the presented session, if any, and expires the cookie.
func (ac *AuthController) Logout(c *ctx.Context) {
	if claims, err := ac.sessions.Resolve(c.R); err == nil {
		if err := ac.auth.Logout(c.Context(), claims); err != nil {
			c.Fail(err)
			return
		}
	}
	ac.sessions.Clear(c.W)
	c.Success(map[string]any{"msg": "Logout Successful"})
}
