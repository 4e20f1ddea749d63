package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/crypt"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type api struct {
	t      *testing.T
	srv    *httptest.Server
	store  *repositories.Store
	client *http.Client
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := repositories.NewMemoryStore()
	sessions := &auth.Sessions{
		Tokens:  auth.NewSigner("test-secret", time.Hour),
		Cookies: crypt.New("cookie-secret"),
		Revoked: cache.NewMemory(),
	}
	svc := services.New(services.Deps{
		Store:   store,
		Disk:    storage.NewLocalDisk(t.TempDir(), ""),
		Events:  event.New(),
		Revoker: sessions,
	})

	r := router.New()
	r.Use(middleware.Recovery)
	routes.RegisterAPI(r, svc, sessions)
	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)

	return &api{t: t, srv: srv, store: store, client: newClient(t)}
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// as returns a copy of the API with a fresh cookie jar.
func (a *api) as() *api {
	cp := *a
	cp.client = newClient(a.t)
	return &cp
}

func (a *api) do(method, path string, body interface{}) (*http.Response, envelope) {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	return a.send(req)
}

func (a *api) send(req *http.Request) (*http.Response, envelope) {
	a.t.Helper()
	resp, err := a.client.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func (a *api) login(email, password string) {
	a.t.Helper()
	resp, env := a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, resp.StatusCode, env.Message)
}

func (a *api) registerAndLogin(name, email string) string {
	a.t.Helper()
	resp, env := a.do(http.MethodPost, "/api/v1/auth/register", map[string]string{"name": name, "email": email, "password": "secret"})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode, env.Message)
	var out struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	a.login(email, "secret")
	return out.User.ID
}

func (a *api) seedAdmin() {
	a.t.Helper()
	hash, err := auth.HashPassword("secret")
	require.NoError(a.t, err)
	u := &models.User{Name: "Admin", Email: "admin@x.io", Password: hash, Role: auth.RoleAdmin}
	require.NoError(a.t, a.store.Users.Create(context.Background(), u))
	a.login("admin@x.io", "secret")
}

func (a *api) seedProduct(name string, price float64) string {
	a.t.Helper()
	p := &models.Product{Name: name, Price: price, Description: "d", Category: "office", Company: "ikea", Image: "/uploads/x.png"}
	require.NoError(a.t, a.store.Products.Create(context.Background(), p))
	return p.ID.Hex()
}

func TestRegisterLoginLogout(t *testing.T) {
	a := newAPI(t)

	resp, env := a.do(http.MethodPost, "/api/v1/auth/register", map[string]string{"name": "Alice", "email": "a@x.io", "password": "secret"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotContains(t, string(env.Data), "password")
	assert.Contains(t, string(env.Data), `"role":"user"`)

	resp, env = a.do(http.MethodPost, "/api/v1/auth/register", map[string]string{"name": "Alice", "email": "a@x.io", "password": "secret"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email is already registered", env.Message)

	resp, _ = a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "a@x.io", "password": "nope!"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "b@x.io", "password": "secret"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = a.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "a@x.io", "password": "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "Login Successful")
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	resp, env = a.do(http.MethodGet, "/api/v1/users/showMe", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"userName":"Alice"`)

	resp, _ = a.do(http.MethodGet, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = a.do(http.MethodGet, "/api/v1/users/showMe", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The old cookie stays dead after logout.
	req, _ := http.NewRequest(http.MethodGet, a.srv.URL+"/api/v1/users/showMe", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: session.Value})
	resp, env = a.as().send(req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication Invalid", env.Message)
}

func TestTamperedCookieIsRejected(t *testing.T) {
	a := newAPI(t)
	a.registerAndLogin("Alice", "a@x.io")

	req, _ := http.NewRequest(http.MethodGet, a.srv.URL+"/api/v1/users/showMe", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "s:forged.token"})
	resp, _ := a.as().send(req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleGates(t *testing.T) {
	a := newAPI(t)
	a.registerAndLogin("Alice", "a@x.io")

	resp, env := a.do(http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not authorized to this route", env.Message)

	resp, _ = a.do(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Desk", "price": 10, "description": "d", "category": "office", "company": "ikea",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = a.as().do(http.MethodGet, "/api/v1/orders/showAllMyOrders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	admin := a.as()
	admin.seedAdmin()
	resp, env = admin.do(http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"count":1`)
}

func TestUserReadsAreOwnerOrAdmin(t *testing.T) {
	a := newAPI(t)
	aliceID := a.registerAndLogin("Alice", "a@x.io")
	bob := a.as()
	bob.registerAndLogin("Bob", "b@x.io")

	resp, _ := a.do(http.MethodGet, "/api/v1/users/"+aliceID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, env := bob.do(http.MethodGet, "/api/v1/users/"+aliceID, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not authorized to access this resource", env.Message)
}

func TestUpdateUserReissuesSession(t *testing.T) {
	a := newAPI(t)
	a.registerAndLogin("Alice", "a@x.io")

	resp, env := a.do(http.MethodPatch, "/api/v1/users/updateUser", map[string]string{"name": "Alicia", "email": "a@x.io", "role": "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Contains(t, string(env.Data), `"userRole":"user"`)

	resp, env = a.do(http.MethodGet, "/api/v1/users/showMe", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"userName":"Alicia"`)

	resp, env = a.do(http.MethodPatch, "/api/v1/users/updateUserPassword", map[string]string{"oldPassword": "secret", "newPassword": "abc"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Errors, "newPassword")
}

func TestProductCRUDAsAdmin(t *testing.T) {
	a := newAPI(t)
	a.seedAdmin()

	resp, env := a.do(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Desk", "price": 10, "description": "oak", "category": "office", "company": "ikea",
		"averageRating": 5, "numOfReviews": 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var created struct {
		Product models.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Zero(t, created.Product.AverageRating)
	assert.Zero(t, created.Product.NumOfReviews)
	id := created.Product.ID.Hex()

	resp, env = a.do(http.MethodPost, "/api/v1/products", map[string]interface{}{"name": "Desk", "category": "garage"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Errors, "category")
	assert.Contains(t, env.Errors, "price")

	resp, _ = a.do(http.MethodPatch, "/api/v1/products/"+id, map[string]interface{}{"price": 12.5})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = a.as().do(http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"count":1`)
	assert.Contains(t, string(env.Data), `"price":12.5`)

	resp, _ = a.do(http.MethodDelete, "/api/v1/products/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, env = a.do(http.MethodGet, "/api/v1/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No product with id: "+id, env.Message)

	resp, _ = a.do(http.MethodGet, "/api/v1/products/not-an-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadImage(t *testing.T) {
	a := newAPI(t)
	a.seedAdmin()

	upload := func(name string, data []byte) (*http.Response, envelope) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("image", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		req, _ := http.NewRequest(http.MethodPost, a.srv.URL+"/api/v1/products/uploadImage", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return a.send(req)
	}

	resp, env := upload("Couch Photo.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Contains(t, string(env.Data), "/uploads/couch-photo.png")

	resp, _ = upload("notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	resp, _ = upload("huge.png", append(png, make([]byte, services.MaxImageBytes)...))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, a.srv.URL+"/api/v1/products/uploadImage", nil)
	resp, env = a.send(req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file uploaded", env.Message)
}

func TestReviewFlow(t *testing.T) {
	a := newAPI(t)
	a.registerAndLogin("Alice", "a@x.io")
	bob := a.as()
	bob.registerAndLogin("Bob", "b@x.io")
	pid := a.seedProduct("Desk", 100)

	resp, env := a.do(http.MethodPost, "/api/v1/reviews", map[string]interface{}{"product": pid, "rating": 4, "title": "ok", "comment": "fine"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var created struct {
		Review models.Review `json:"review"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	rid := created.Review.ID.Hex()

	resp, env = a.do(http.MethodPost, "/api/v1/reviews", map[string]interface{}{"product": pid, "rating": 5, "title": "again", "comment": "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Already submitted review for this product", env.Message)

	resp, env = bob.do(http.MethodPatch, "/api/v1/reviews/"+rid, map[string]interface{}{"rating": 1, "title": "x", "comment": "y"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "You are not allowed to update this review", env.Message)

	resp, env = a.do(http.MethodGet, "/api/v1/products/"+pid, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"averageRating":4`)
	assert.Contains(t, string(env.Data), `"numOfReviews":1`)

	resp, env = a.as().do(http.MethodGet, "/api/v1/products/"+pid+"/reviews", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"count":1`)

	resp, env = a.do(http.MethodDelete, "/api/v1/reviews/"+rid, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "Delete Successful")
}

func TestOrderFlow(t *testing.T) {
	a := newAPI(t)
	a.registerAndLogin("Alice", "a@x.io")
	bob := a.as()
	bob.registerAndLogin("Bob", "b@x.io")
	pid := a.seedProduct("Chair", 10)

	resp, env := a.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"tax": 1, "shippingFee": 5, "orderItems": []map[string]interface{}{{"product": pid, "amount": 2, "price": 0.01}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var checkout struct {
		Order        models.Order `json:"order"`
		ClientSecret string       `json:"clientSecret"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &checkout))
	assert.Equal(t, 20.0, checkout.Order.Subtotal)
	assert.Equal(t, 26.0, checkout.Order.Total)
	assert.Equal(t, models.OrderPending, checkout.Order.Status)
	assert.NotEmpty(t, checkout.ClientSecret)
	oid := checkout.Order.ID.Hex()

	resp, env = a.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{"tax": 1, "orderItems": []interface{}{}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Errors, "shippingFee")
	assert.Contains(t, env.Errors, "orderItems")

	resp, _ = bob.do(http.MethodGet, "/api/v1/orders/"+oid, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = bob.do(http.MethodPatch, "/api/v1/orders/"+oid, map[string]string{"paymentIntentId": "pi_1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env = a.do(http.MethodPatch, "/api/v1/orders/"+oid, map[string]string{"paymentIntentId": "pi_1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Contains(t, string(env.Data), `"status":"paid"`)

	resp, env = a.do(http.MethodGet, "/api/v1/orders/showAllMyOrders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"count":1`)
	assert.Contains(t, string(env.Data), `"userName":"Alice"`)
}
