// Package payment creates payment intents for orders.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Intent is what the gateway is asked to charge. Amount is in major units.
type Intent struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// IntentResult is handed back to the client to finish payment.
type IntentResult struct {
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
}

// Gateway is the payment collaborator used by checkout.
type Gateway interface {
	CreateIntent(ctx context.Context, in Intent) (IntentResult, error)
}

// Open returns the HTTP gateway when PAYMENT_URL is set, else the stub.
func Open() Gateway {
	if url := config.PaymentURL(); url != "" {
		return &HTTPGateway{URL: url, Key: config.PaymentKey()}
	}
	return StubGateway{}
}

// StubGateway fabricates a client secret without calling anything.
type StubGateway struct{}

func (StubGateway) CreateIntent(_ context.Context, in Intent) (IntentResult, error) {
	defer observe("stub", "ok", time.Now())
	return IntentResult{
		ClientSecret: fmt.Sprintf("pi_%s_secret_%s", compact(uuid.New()), compact(uuid.New())),
		Amount:       in.Amount,
	}, nil
}

func compact(id uuid.UUID) string { return strings.ReplaceAll(id.String(), "-", "") }

// HTTPGateway posts intents as JSON to a payment service. Amounts are sent
// in minor units. Every attempt of one CreateIntent call carries the same
// Idempotency-Key, so a retried request cannot open a second intent.
type HTTPGateway struct {
	URL string
	Key string
}

type intentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type intentResponse struct {
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, in Intent) (res IntentResult, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		observe("http", outcome, start)
	}()

	resp, err := http.Post(g.URL).
		WithContext(ctx).
		Bearer(g.Key).
		Header("Idempotency-Key", uuid.NewString()).
		Body(intentRequest{Amount: toMinor(in.Amount), Currency: in.Currency}).
		Timeout(5*time.Second).
		Retry(3, 200*time.Millisecond).
		Send()
	if err != nil {
		return IntentResult{}, err
	}
	if err := resp.Throw(); err != nil {
		return IntentResult{}, err
	}

	var out intentResponse
	if err := resp.JSON(&out); err != nil {
		return IntentResult{}, err
	}
	if out.ClientSecret == "" {
		return IntentResult{}, errors.New("payment: gateway returned no client secret")
	}
	return IntentResult{ClientSecret: out.ClientSecret, Amount: float64(out.Amount) / 100}, nil
}

func toMinor(amount float64) int64 { return int64(math.Round(amount * 100)) }

func observe(gateway, outcome string, start time.Time) {
	metrics.PaymentDuration.WithLabelValues(gateway, outcome).Observe(time.Since(start).Seconds())
}
