// Package shadow talks to the Shadow payment processor: STK push charge
// initiation + checkout status queries. Transport and protocol errors are
// swallowed at this boundary and come back as failed/pending results; the
// engine treats an unreachable gateway the same as a declined charge.
package shadow

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
	DefaultSTKPushURL = "https://shadow-pay.top/api/v2/stkpush.php"
	DefaultStatusURL  = "https://shadow-pay.top/api/v2/status.php"

	initiateTimeout = 30 * time.Second
	statusTimeout   = 20 * time.Second
)

type Credentials struct {
	APIKey    string
	APISecret string
}

type Client struct {
	stkURL    string
	statusURL string
	http      *http.Client
}

func NewClient(stkURL, statusURL string) *Client {
	if stkURL == "" {
		stkURL = DefaultSTKPushURL
	}
	if statusURL == "" {
		statusURL = DefaultStatusURL
	}
	return &Client{stkURL: stkURL, statusURL: statusURL, http: &http.Client{}}
}

type InitiateResult struct {
	Success           bool   `json:"success"`
	CheckoutRequestID string `json:"checkout_request_id"`
	MerchantRequestID string `json:"merchant_request_id"`
	Message           string `json:"message"`
}

// Heterogeneous status response: provider uses status/result and several
// aliases for the transaction reference depending on response shape.
type StatusResult struct {
	Status          string `json:"status"`
	Result          string `json:"result"`
	TransactionCode string `json:"transaction_code"`
	Transaction     string `json:"transaction"`
	Tx              string `json:"tx"`
	Message         string `json:"message"`
}

type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomePaid
	OutcomeFailed
)

// Interpret collapses the response shape into one of three outcomes plus
// the confirmed transaction reference when paid. A present reference
// counts as paid even without a completed status.
func (r StatusResult) Interpret() (Outcome, string) {
	tx := firstNonEmpty(r.TransactionCode, r.Transaction, r.Tx)
	st := strings.ToLower(firstNonEmpty(r.Status, r.Result))
	if st == "completed" || st == "success" || tx != "" {
		return OutcomePaid, tx
	}
	if st == "failed" || strings.EqualFold(r.Message, "failed") {
		return OutcomeFailed, ""
	}
	return OutcomePending, ""
}

// Initiate sends the STK push. accountID is the provider payment account.
func (c *Client) Initiate(ctx context.Context, creds Credentials, accountID, phone string, amount decimal.Decimal, reference, description string) InitiateResult {
	acct, _ := strconv.Atoi(accountID)
	payload := map[string]any{
		"payment_account_id": acct,
		"phone":              phone,
		"amount":             amount.InexactFloat64(),
		"reference":          reference,
		"description":        description,
	}

	ctx, cancel := context.WithTimeout(ctx, initiateTimeout)
	defer cancel()

	var out InitiateResult
	if err := c.post(ctx, c.stkURL, creds, payload, &out); err != nil {
		return InitiateResult{Success: false, Message: err.Error()}
	}
	return out
}

// Status queries one checkout. Transport failures come back with the error
// text in Message and no status fields, which Interpret reads as pending.
func (c *Client) Status(ctx context.Context, creds Credentials, checkoutID string) StatusResult {
	payload := map[string]any{"checkout_request_id": checkoutID}

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	var out StatusResult
	if err := c.post(ctx, c.statusURL, creds, payload, &out); err != nil {
		return StatusResult{Message: err.Error()}
	}
	return out
}

func (c *Client) post(ctx context.Context, url string, creds Credentials, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", creds.APIKey)
	req.Header.Set("X-API-Secret", creds.APISecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("shadow: http %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("shadow: decode response: %w", err)
	}
	return nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
