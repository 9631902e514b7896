package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/clubworks/memberpay/pkg/config"
)

// ErrRequestFailed marks a failed call to the provider API. The verify
// endpoint maps it to 502 so the client's poll loop retries.
var ErrRequestFailed = errors.New("cashfree request failed")

const requestTimeout = 10 * time.Second

// Client is a thin client for the Cashfree PG REST API. Only the three calls
// this system needs: create order, fetch order, fetch order payments.
type Client struct {
	cfg  cfgpkg.CashfreeConfig
	http *http.Client
	log  *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{
		cfg:  cfg.Cashfree,
		http: &http.Client{Timeout: requestTimeout},
		log:  log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.cfg.AppID)
	req.Header.Set("x-client-secret", c.cfg.SecretKey)
	req.Header.Set("x-api-version", c.cfg.APIVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Errorw("cashfree_api_error", "method", method, "path", path, "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("%w: %s %s: status %d", ErrRequestFailed, method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
		}
	}
	return nil
}

// CreateOrder creates a payment order with the provider.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderEntity, error) {
	var out OrderEntity
	if err := c.do(ctx, http.MethodPost, "/pg/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchOrder fetches the current order status from the provider.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*OrderEntity, error) {
	var out OrderEntity
	if err := c.do(ctx, http.MethodGet, "/pg/orders/"+orderID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchOrderPayments lists the payment attempts recorded against an order.
func (c *Client) FetchOrderPayments(ctx context.Context, orderID string) ([]*PaymentEntity, error) {
	var out []*PaymentEntity
	if err := c.do(ctx, http.MethodGet, "/pg/orders/"+orderID+"/payments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
