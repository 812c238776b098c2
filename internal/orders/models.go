package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              string          `json:"id"`
	OrderNo         string          `json:"order_no"`
	PayerNumber     string          `json:"payer_number"`
	RecipientNumber string          `json:"recipient_number"`
	Amount          decimal.Decimal `json:"amount"`
	AmountPayable   decimal.Decimal `json:"amount_payable"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Status          Status          `json:"status"` // lihat status.go
	CheckoutID      string          `json:"checkout_request_id,omitempty"`
	MerchantID      string          `json:"merchant_request_id,omitempty"`
	TransactionCode string          `json:"transaction_code,omitempty"`
	AirtimeStatus   AirtimeStatus   `json:"airtime_status,omitempty"`
	AirtimeResponse string          `json:"airtime_response,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
