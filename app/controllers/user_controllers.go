package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type UserController struct {
	users    *services.UserService
	sessions *auth.Sessions
}

func NewUserController(svc *services.Services, sessions *auth.Sessions) *UserController {
	return &UserController{users: svc.Users, sessions: sessions}
}

func (uc *UserController) Index(c *ctx.Context) {
	users, err := uc.users.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"users": users, "count": len(users)})
}

func (uc *UserController) Show(c *ctx.Context) {
	u, err := uc.users.Get(c.Context(), c.Principal(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"user": u})
}

// ShowMe returns the identity carried by the session.
func (uc *UserController) ShowMe(c *ctx.Context) {
	c.Success(map[string]any{"user": c.Principal()})
}

// Update changes name and email and reissues the session cookie.
func (uc *UserController) Update(c *ctx.Context) {
	var in services.UpdateProfileInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.users.UpdateProfile(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	p := u.Principal()
	if err := uc.sessions.Attach(c.W, p); err != nil {
		c.Fail(apperr.Wrap(apperr.Internal, err, "issue session"))
		return
	}
	c.Success(map[string]any{"msg": "Update user successful", "user": p})
}

func (uc *UserController) UpdatePassword(c *ctx.Context) {
	var in services.UpdatePasswordInput
	if !c.BindJSON(&in) {
		return
	}
	if err := uc.users.UpdatePassword(c.Context(), c.Principal(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"msg": "Success!! Password updated"})
}
