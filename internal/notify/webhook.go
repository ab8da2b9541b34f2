// Package notify delivers price alert notifications to an external webhook.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client posts alert payloads to a webhook. When a secret is configured the
// request URL carries a timestamp and an HMAC-SHA256 signature.
type Client struct {
	webhook    string
	secret     string
	httpClient *http.Client
}

type Payload struct {
	Skin      string  `json:"skin"`
	Price     float64 `json:"price"`
	Threshold float64 `json:"threshold"`
	Timestamp string  `json:"timestamp"`
}

func NewClient(webhook, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		webhook: webhook,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Send(ctx context.Context, p Payload) error {
	if c.webhook == "" {
		return fmt.Errorf("webhook is empty")
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	endpoint, err := c.signedURL()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) signedURL() (string, error) {
	if c.secret == "" {
		return c.webhook, nil
	}

	ts := time.Now().UnixMilli()
	signature := sign(fmt.Sprintf("%d\n%s", ts, c.secret), c.secret)

	u, err := url.Parse(c.webhook)
	if err != nil {
		return "", fmt.Errorf("invalid webhook url: %w", err)
	}
	q := u.Query()
	q.Set("timestamp", fmt.Sprintf("%d", ts))
	q.Set("sign", signature)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func sign(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(message))
	sum := mac.Sum(nil)
	return base64.StdEncoding.EncodeToString(sum)
}
