// Package statum submits airtime top-ups to the Statum processor. The
// provider has no single canonical success field, so the result keeps the
// raw body for audit and exposes a heuristic Succeeded check.
package statum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultAirtimeURL = "https://api.statum.co.ke/api/v2/airtime"

	deliverTimeout = 30 * time.Second
)

type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
}

type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string) *Client {
	if url == "" {
		url = DefaultAirtimeURL
	}
	return &Client{url: url, http: &http.Client{}}
}

// statusCode tolerates both numeric and quoted provider codes.
type statusCode int

func (n *statusCode) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		*n = 0
		return nil
	}
	*n = statusCode(v)
	return nil
}

type DeliveryResult struct {
	Success    bool       `json:"success"`
	StatusCode statusCode `json:"status_code"`
	Message    string     `json:"message"`

	// Raw is the unparsed provider body, stored on the order for audit.
	Raw string `json:"-"`
}

// Succeeded applies both known success signals: the explicit flag and the
// provider "OK" code.
func (r DeliveryResult) Succeeded() bool {
	return r.Success || r.StatusCode == http.StatusOK
}

func (c *Client) Deliver(ctx context.Context, creds Credentials, phone string, amount decimal.Decimal) DeliveryResult {
	payload := map[string]any{
		"phone_number": phone,
		"amount":       amount.String(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return DeliveryResult{Message: err.Error(), Raw: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return DeliveryResult{Message: err.Error(), Raw: err.Error()}
	}
	req.SetBasicAuth(creds.ConsumerKey, creds.ConsumerSecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return DeliveryResult{Message: err.Error(), Raw: err.Error()}
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return DeliveryResult{Message: err.Error(), Raw: err.Error()}
	}

	out := DeliveryResult{Raw: strings.TrimSpace(string(b))}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		out.Message = fmt.Sprintf("statum: http %d: %s", res.StatusCode, out.Raw)
		return out
	}
	if err := json.Unmarshal(b, &out); err != nil {
		out.Message = fmt.Sprintf("statum: decode response: %v", err)
	}
	return out
}
