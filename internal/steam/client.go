package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "CS-Skin-Tracker/2.0"

// Lookup failure reasons. They are logged distinctly by the caller but all
// mean the same thing operationally: skip the item and move on.
var (
	ErrTimeout    = errors.New("lookup timed out")
	ErrConnection = errors.New("lookup connection failed")
	ErrHTTPStatus = errors.New("lookup returned error status")
	ErrBadBody    = errors.New("lookup returned malformed body")
	ErrNotFound   = errors.New("lookup not successful")
)

type ClientConfig struct {
	BaseURL  string
	AppID    int
	Currency int
	Timeout  time.Duration
}

// Client fetches price overviews from the Steam Community Market.
type Client struct {
	http     *resty.Client
	baseURL  string
	appID    int
	currency int
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://steamcommunity.com/market/priceoverview/"
	}
	if cfg.AppID == 0 {
		cfg.AppID = 730
	}
	if cfg.Currency == 0 {
		cfg.Currency = 3 // EUR
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	http := resty.New()
	http.SetTimeout(cfg.Timeout)
	http.SetHeader("User-Agent", userAgent)
	http.SetHeader("Accept", "application/json")
	http.SetHeader("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")

	return &Client{
		http:     http,
		baseURL:  cfg.BaseURL,
		appID:    cfg.AppID,
		currency: cfg.Currency,
	}
}

type priceOverview struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	MedianPrice string `json:"median_price"`
	Volume      string `json:"volume"`
}

// Lookup fetches and normalizes the price overview for one market hash
// name. All failure modes map onto the sentinel errors above.
func (c *Client) Lookup(ctx context.Context, name string) (Quote, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"appid":            strconv.Itoa(c.appID),
			"currency":         strconv.Itoa(c.currency),
			"market_hash_name": name,
		}).
		Get(c.baseURL)
	if err != nil {
		return Quote{}, classifyTransportError(err)
	}
	if resp.IsError() {
		return Quote{}, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode())
	}

	var po priceOverview
	if err := json.Unmarshal(resp.Body(), &po); err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if !po.Success {
		return Quote{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return BuildQuote(po.LowestPrice, po.MedianPrice, po.Volume), nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}
