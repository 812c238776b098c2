package orders

type Status string

const (
	StatusPendingPayment    Status = "pending_payment"
	StatusPaid              Status = "paid"
	StatusPaymentFailed     Status = "payment_failed"
	StatusFailedPaymentInit Status = "failed_payment_init"
	StatusPaymentTimeout    Status = "payment_timeout"
)

// AirtimeStatus adalah sub-status hasil delivery, bukan top-level state.
type AirtimeStatus string

const (
	AirtimeDelivered      AirtimeStatus = "delivered"
	AirtimeDeliveryFailed AirtimeStatus = "delivery_failed"
)

// Semua state selain pending_payment terminal utk fase payment; tidak ada
// jalan balik ke pending. paid->paid diizinkan untuk force deliver.
var validNext = map[Status]map[Status]bool{
	StatusPendingPayment:    {StatusPaid: true, StatusPaymentFailed: true, StatusFailedPaymentInit: true, StatusPaymentTimeout: true},
	StatusPaid:              {StatusPaid: true},
	StatusPaymentFailed:     {StatusPaid: true},
	StatusFailedPaymentInit: {StatusPaid: true},
	StatusPaymentTimeout:    {StatusPaid: true},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	return s != StatusPendingPayment
}
