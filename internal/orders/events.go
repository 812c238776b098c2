package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventPaymentInitFailed  = "PaymentInitFailed"
	EventPaymentConfirmed   = "PaymentConfirmed"
	EventPaymentFailed      = "PaymentFailed"
	EventPaymentTimeout     = "PaymentTimeout"
	EventAirtimeDelivered   = "AirtimeDelivered"
	EventAirtimeDeliveryErr = "AirtimeDeliveryFailed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "airtime-api"
	CorrelationID string          `json:"correlation_id,omitempty"` // order_no
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type OrderCreatedPayload struct {
	OrderNo         string          `json:"order_no"`
	PayerNumber     string          `json:"payer_number"`
	RecipientNumber string          `json:"recipient_number"`
	Amount          decimal.Decimal `json:"amount"`
	AmountPayable   decimal.Decimal `json:"amount_payable"`
}

type PaymentInitFailedPayload struct {
	OrderNo string `json:"order_no"`
	Message string `json:"message,omitempty"`
}

type PaymentConfirmedPayload struct {
	OrderNo         string `json:"order_no"`
	CheckoutID      string `json:"checkout_request_id"`
	TransactionCode string `json:"transaction_code,omitempty"`
}

type PaymentFailedPayload struct {
	OrderNo    string `json:"order_no"`
	CheckoutID string `json:"checkout_request_id"`
}

type PaymentTimeoutPayload struct {
	OrderNo    string `json:"order_no"`
	CheckoutID string `json:"checkout_request_id"`
	Attempts   int    `json:"attempts"`
}

type AirtimeDeliveryPayload struct {
	OrderNo         string          `json:"order_no"`
	RecipientNumber string          `json:"recipient_number"`
	Amount          decimal.Decimal `json:"amount"`
	Delivered       bool            `json:"delivered"`
}
