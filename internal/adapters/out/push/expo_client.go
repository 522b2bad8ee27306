// Package push sends device notifications through the Expo push service.
package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/notification"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

// DefaultEndpoint is the public Expo push endpoint.
const DefaultEndpoint = "https://exp.host/--/api/v2/push/send"

const sendPath = "/push/send"

type Config struct {
	// Endpoint is the full push/send URL.
	Endpoint    string
	AccessToken string
	Timeout     time.Duration
}

// ExpoClient implements ports.PushProvider on top of the Expo server SDK.
// The SDK owns the wire format; this adapter only classifies failures.
type ExpoClient struct {
	host        string
	apiURL      string
	accessToken string
	timeout     time.Duration
	transport   http.RoundTripper
}

func NewExpoClient(cfg Config) *ExpoClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	host, apiURL := splitEndpoint(cfg.Endpoint)

	return &ExpoClient{
		host:        host,
		apiURL:      apiURL,
		accessToken: cfg.AccessToken,
		timeout:     cfg.Timeout,
		transport:   http.DefaultTransport,
	}
}

// Send delivers msg to token.
//
// Errors:
//   - wrapping notification.ErrTokenUnregistered when the device is gone
//   - wrapping notification.ErrProviderUnavailable for timeouts, throttling
//     and 5xx responses
//   - ctx.Err() when the caller gave up
//   - anything else is permanent for this message
func (c *ExpoClient) Send(ctx context.Context, token string, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	call := &callTransport{ctx: ctx, accessToken: c.accessToken, base: c.transport}
	client := expo.NewPushClient(&expo.ClientConfig{
		Host:       c.host,
		APIURL:     c.apiURL,
		HTTPClient: &http.Client{Timeout: c.timeout, Transport: call},
	})

	resp, err := client.Publish(&expo.PushMessage{
		To:       []expo.ExponentPushToken{expo.ExponentPushToken(token)},
		Title:    msg.Title,
		Body:     msg.Body,
		Data:     msg.Data,
		Sound:    "default",
		Priority: expo.DefaultPriority,
	})
	if err != nil {
		return c.publishError(ctx, call.status, err)
	}

	return ticketError(&resp)
}

func (c *ExpoClient) publishError(ctx context.Context, status int, err error) error {
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		return ctxErr
	}

	switch {
	case status == 0:
		// No response at all: timeout, refused connection, reset.
		return fmt.Errorf("%w: %w", notification.ErrProviderUnavailable, err)
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d: %w", notification.ErrProviderUnavailable, status, err)
	default:
		return fmt.Errorf("push rejected with status %d: %w", status, err)
	}
}

func ticketError(resp *expo.PushResponse) error {
	err := resp.ValidateResponse()
	if err == nil {
		return nil
	}

	var (
		unregistered *expo.DeviceNotRegisteredError
		throttled    *expo.MessageRateExceededError
	)
	switch {
	case errors.As(err, &unregistered):
		return fmt.Errorf("%w: %w", notification.ErrTokenUnregistered, err)
	case errors.As(err, &throttled):
		return fmt.Errorf("%w: %w", notification.ErrProviderUnavailable, err)
	default:
		return fmt.Errorf("push ticket error %s: %w", resp.Details["error"], err)
	}
}

// callTransport binds one Send to its context and records the status code
// the provider answered with, which the SDK does not expose.
type callTransport struct {
	ctx         context.Context
	accessToken string
	base        http.RoundTripper

	status int
}

func (t *callTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(t.ctx)
	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}

	resp, err := t.base.RoundTrip(req)
	if resp != nil {
		t.status = resp.StatusCode
	}
	return resp, err
}

// splitEndpoint turns a push/send URL into the host and API prefix the SDK
// joins back together.
func splitEndpoint(endpoint string) (host, apiURL string) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint, ""
	}
	return u.Scheme + "://" + u.Host, strings.TrimSuffix(strings.TrimRight(u.Path, "/"), sendPath)
}
