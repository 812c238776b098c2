// Package notify delivers best-effort operator alerts through a WhatsApp
// HTTP gateway. The channel may be unconfigured or down; callers check
// Ready and log Send errors instead of failing the order flow.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fybot/airtime-orders/internal/msisdn"
)

const sendTimeout = 10 * time.Second

type WhatsApp struct {
	gatewayURL string
	adminPhone string
	http       *http.Client
}

// NewWhatsApp builds a notifier for the operator number. Either argument
// empty leaves the notifier not-ready, which is a valid deployment.
func NewWhatsApp(gatewayURL, adminPhone string) *WhatsApp {
	return &WhatsApp{
		gatewayURL: gatewayURL,
		adminPhone: msisdn.Normalize(adminPhone),
		http:       &http.Client{},
	}
}

func (w *WhatsApp) Ready() bool {
	return w.gatewayURL != "" && w.adminPhone != ""
}

func (w *WhatsApp) Send(ctx context.Context, text string) error {
	if !w.Ready() {
		return fmt.Errorf("notify: channel not configured")
	}
	body, err := json.Marshal(map[string]string{
		"to":      w.adminPhone,
		"message": text,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("notify: gateway http %d", res.StatusCode)
	}
	return nil
}
