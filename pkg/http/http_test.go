package http

import (
	"context"
	"encoding/json"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/reqid"
)

func TestSendRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(gohttp.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "rid-1", r.Header.Get(reqid.Header))
		var in map[string]int
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]int{"echo": in["amount"]})
	}))
	defer srv.Close()

	ctx := reqid.WithValue(context.Background(), "rid-1")
	resp, err := Post(srv.URL).WithContext(ctx).Bearer("k").
		Body(map[string]int{"amount": 42}).
		Retry(3, time.Millisecond).
		Send()
	require.NoError(t, err)
	require.NoError(t, resp.Throw())

	var out map[string]int
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, 42, out["echo"])
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(gohttp.StatusBadRequest)
	}))
	defer srv.Close()

	resp, err := Get(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.Error(t, resp.Throw())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSendGivesUp(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.WriteHeader(gohttp.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := Get(srv.URL).Retry(2, time.Millisecond).Send()
	assert.Error(t, err)
}
