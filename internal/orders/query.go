package orders

import "strings"

// Filter is the status class used by presentation layers.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPaid      Filter = "paid"
	FilterPending   Filter = "pending"
	FilterCancelled Filter = "cancelled" // semua state gagal/timeout
)

func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterPaid, FilterPending, FilterCancelled:
		return Filter(s)
	}
	return FilterAll
}

func (f Filter) matches(o Order) bool {
	switch f {
	case FilterPaid:
		return o.Status == StatusPaid
	case FilterPending:
		return strings.Contains(string(o.Status), "pending")
	case FilterCancelled:
		switch o.Status {
		case StatusPaymentFailed, StatusFailedPaymentInit, StatusPaymentTimeout:
			return true
		}
		return o.Status == StatusPaid && o.AirtimeStatus == AirtimeDeliveryFailed
	}
	return true
}

// Search filters the collection by status class and free-text query over
// order number, transaction code and payer number. Newest first.
func (s *Store) Search(f Filter, q string) []Order {
	q = strings.ToLower(strings.TrimSpace(q))
	all := s.List()
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if !f.matches(o) {
			continue
		}
		if q != "" && !matchText(o, q) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func matchText(o Order, q string) bool {
	return strings.Contains(strings.ToLower(o.OrderNo), q) ||
		strings.Contains(strings.ToLower(o.TransactionCode), q) ||
		strings.Contains(o.PayerNumber, q)
}
