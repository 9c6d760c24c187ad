package billing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hearth-collective/hearth/internal/pkg/env"
)

const defaultProviderAPIBaseURL = "https://api.stripe.com/v1"

// Client is the surface of the external subscription provider consumed by
// the reconciler.
type Client interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	CreateCustomer(ctx context.Context, description string) (*Customer, error)
	CreateSubscription(ctx context.Context, customerRef, planID, sourceToken string) (*Subscription, error)
	UpdateSubscription(ctx context.Context, customerRef, subscriptionRef string, upd SubscriptionUpdate) (*Subscription, error)
	CancelSubscription(ctx context.Context, customerRef, subscriptionRef string) error
	GetSubscription(ctx context.Context, customerRef, subscriptionRef string) (*Subscription, error)
}

// ProviderClient talks to a Stripe-compatible subscription API with a
// per-collective secret key.
type ProviderClient struct {
	SecretKey  string
	APIBaseURL string

	HTTPClient *http.Client
}

// NewProviderClient builds a client for one collective's key pair. Calls
// time out rather than stalling a request's flow indefinitely.
func NewProviderClient(secretKey string) *ProviderClient {
	return &ProviderClient{
		SecretKey:  strings.TrimSpace(secretKey),
		APIBaseURL: strings.TrimRight(env.GetEnv("BILLING_API_BASE_URL", defaultProviderAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *ProviderClient) ListPlans(ctx context.Context) ([]Plan, error) {
	var out struct {
		Data []Plan `json:"data"`
	}
	q := url.Values{}
	q.Set("limit", "50")
	if err := c.do(ctx, http.MethodGet, "/plans?"+q.Encode(), nil, &out, "list plans"); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *ProviderClient) CreateCustomer(ctx context.Context, description string) (*Customer, error) {
	form := url.Values{}
	form.Set("description", description)

	var out Customer
	if err := c.do(ctx, http.MethodPost, "/customers", form, &out, "create customer"); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &ProviderError{Op: "create customer", Err: errors.New("provider returned empty customer id")}
	}
	return &out, nil
}

func (c *ProviderClient) CreateSubscription(ctx context.Context, customerRef, planID, sourceToken string) (*Subscription, error) {
	form := url.Values{}
	form.Set("plan", planID)
	form.Set("source", sourceToken)

	var out Subscription
	path := "/customers/" + url.PathEscape(customerRef) + "/subscriptions"
	if err := c.do(ctx, http.MethodPost, path, form, &out, "create subscription"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ProviderClient) UpdateSubscription(ctx context.Context, customerRef, subscriptionRef string, upd SubscriptionUpdate) (*Subscription, error) {
	form := url.Values{}
	if upd.PlanID != "" {
		form.Set("plan", upd.PlanID)
	}
	if upd.SourceToken != "" {
		form.Set("source", upd.SourceToken)
	}

	var out Subscription
	path := "/customers/" + url.PathEscape(customerRef) + "/subscriptions/" + url.PathEscape(subscriptionRef)
	if err := c.do(ctx, http.MethodPost, path, form, &out, "update subscription"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ProviderClient) CancelSubscription(ctx context.Context, customerRef, subscriptionRef string) error {
	path := "/customers/" + url.PathEscape(customerRef) + "/subscriptions/" + url.PathEscape(subscriptionRef)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "cancel subscription")
}

func (c *ProviderClient) GetSubscription(ctx context.Context, customerRef, subscriptionRef string) (*Subscription, error) {
	var out Subscription
	path := "/customers/" + url.PathEscape(customerRef) + "/subscriptions/" + url.PathEscape(subscriptionRef)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, "retrieve subscription"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ProviderClient) do(ctx context.Context, method, path string, form url.Values, out interface{}, op string) error {
	if c.SecretKey == "" {
		return &ProviderError{Op: op, Err: errors.New("billing secret key is not configured")}
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.APIBaseURL+path, body)
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	req.SetBasicAuth(c.SecretKey, "")
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: providerErrorMessage(raw),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	return nil
}

func providerErrorMessage(raw []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
