package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Product string `json:"product" validate:"required"`
	Amount  int    `json:"amount" validate:"required,gte=1"`
}

type cart struct {
	Email string   `json:"email" validate:"required,email"`
	Tax   *float64 `json:"tax" validate:"required,gte=0"`
	Items []item   `json:"orderItems" validate:"required,min=1,dive"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestJSONValid(t *testing.T) {
	var c cart
	errs, err := JSON(post(`{"email":"a@b.co","tax":0,"orderItems":[{"product":"p","amount":2}]}`), &c)
	require.NoError(t, err)
	assert.False(t, HasErrors(errs))
	require.NotNil(t, c.Tax)
	assert.Zero(t, *c.Tax)
}

func TestJSONFieldErrorsUseJSONNames(t *testing.T) {
	var c cart
	errs, err := JSON(post(`{"email":"nope","orderItems":[{"product":"p","amount":0}]}`), &c)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"email":           "must be a valid email",
		"tax":             "is required",
		"orderItems[0].amount": "is required",
	}, errs)
}

func TestJSONEmptyBodyReportsMissingFields(t *testing.T) {
	var c cart
	errs, err := JSON(post(``), &c)
	require.NoError(t, err)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "orderItems")
}

func TestJSONWrongType(t *testing.T) {
	var c cart
	errs, err := JSON(post(`{"tax":"ten"}`), &c)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tax": "has the wrong type"}, errs)
}

func TestJSONMalformed(t *testing.T) {
	var c cart
	_, err := JSON(post(`{"email":`), &c)
	assert.ErrorContains(t, err, "invalid JSON")
}
