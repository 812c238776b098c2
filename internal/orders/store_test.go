package orders

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(payer, recipient string) *Order {
	return &Order{
		ID:              "id-" + payer,
		PayerNumber:     payer,
		RecipientNumber: recipient,
		Amount:          d("100"),
		AmountPayable:   d("100"),
		Status:          StatusPendingPayment,
	}
}

func TestStoreCreateAndFind(t *testing.T) {
	s, err := OpenStore(t.TempDir())
	require.NoError(t, err)

	o := newOrder("254712345678", "254712345678")
	require.NoError(t, s.Create(o))

	assert.Regexp(t, regexp.MustCompile(`^FYS-[0-9]{8}$`), o.OrderNo)
	assert.False(t, o.CreatedAt.IsZero())

	got, ok := s.FindByOrderNo(o.OrderNo)
	require.True(t, ok)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, StatusPendingPayment, got.Status)

	_, ok = s.FindByOrderNo("FYS-00000000")
	assert.False(t, ok)
}

func TestStoreNewestFirst(t *testing.T) {
	s, err := OpenStore(t.TempDir())
	require.NoError(t, err)

	first := newOrder("254700000001", "254700000001")
	second := newOrder("254700000002", "254700000002")
	require.NoError(t, s.Create(first))
	require.NoError(t, s.Create(second))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.OrderNo, list[0].OrderNo)
	assert.Equal(t, first.OrderNo, list[1].OrderNo)
}

func TestStoreOrderNoCollisionRetry(t *testing.T) {
	s, err := OpenStore(t.TempDir())
	require.NoError(t, err)

	taken := newOrder("254700000001", "254700000001")
	taken.OrderNo = "FYS-11111111"
	require.NoError(t, s.Create(taken))

	// first generated number collides, generator must be retried
	calls := 0
	old := genOrderNo
	genOrderNo = func() string {
		calls++
		if calls == 1 {
			return "FYS-11111111"
		}
		return "FYS-22222222"
	}
	defer func() { genOrderNo = old }()

	o := newOrder("254700000002", "254700000002")
	require.NoError(t, s.Create(o))
	assert.Equal(t, "FYS-22222222", o.OrderNo)
	assert.Equal(t, 2, calls)
}

func TestStoreUpdateBumpsTimestampAndPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenStore(dir)
	require.NoError(t, err)

	o := newOrder("254712345678", "254712345678")
	require.NoError(t, s.Create(o))

	updated, err := s.UpdateByOrderNo(o.OrderNo, func(x *Order) {
		x.Status = StatusPaid
		x.TransactionCode = "QAX123"
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, updated.Status)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	// snapshot survives a reopen
	s2, err := OpenStore(dir)
	require.NoError(t, err)
	got, ok := s2.FindByOrderNo(o.OrderNo)
	require.True(t, ok)
	assert.Equal(t, StatusPaid, got.Status)
	assert.Equal(t, "QAX123", got.TransactionCode)
}

func TestStoreUpdateByCheckout(t *testing.T) {
	s, err := OpenStore(t.TempDir())
	require.NoError(t, err)

	o := newOrder("254712345678", "254712345678")
	require.NoError(t, s.Create(o))
	_, err = s.UpdateByOrderNo(o.OrderNo, func(x *Order) { x.CheckoutID = "CS1" })
	require.NoError(t, err)

	got, err := s.UpdateByCheckout("CS1", func(x *Order) { x.Status = StatusPaid })
	require.NoError(t, err)
	assert.Equal(t, o.OrderNo, got.OrderNo)

	_, err = s.UpdateByCheckout("missing", func(x *Order) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchFilters(t *testing.T) {
	s, err := OpenStore(t.TempDir())
	require.NoError(t, err)

	paid := newOrder("254700000001", "254700000001")
	require.NoError(t, s.Create(paid))
	_, err = s.UpdateByOrderNo(paid.OrderNo, func(x *Order) {
		x.Status = StatusPaid
		x.TransactionCode = "QAX123"
	})
	require.NoError(t, err)

	pending := newOrder("254700000002", "254700000002")
	require.NoError(t, s.Create(pending))

	timedOut := newOrder("254700000003", "254700000003")
	require.NoError(t, s.Create(timedOut))
	_, err = s.UpdateByOrderNo(timedOut.OrderNo, func(x *Order) { x.Status = StatusPaymentTimeout })
	require.NoError(t, err)

	assert.Len(t, s.Search(FilterAll, ""), 3)

	got := s.Search(FilterPaid, "")
	require.Len(t, got, 1)
	assert.Equal(t, paid.OrderNo, got[0].OrderNo)

	got = s.Search(FilterPending, "")
	require.Len(t, got, 1)
	assert.Equal(t, pending.OrderNo, got[0].OrderNo)

	got = s.Search(FilterCancelled, "")
	require.Len(t, got, 1)
	assert.Equal(t, timedOut.OrderNo, got[0].OrderNo)

	// free text over tx code and payer
	got = s.Search(FilterAll, "qax")
	require.Len(t, got, 1)
	assert.Equal(t, paid.OrderNo, got[0].OrderNo)

	got = s.Search(FilterAll, "254700000002")
	require.Len(t, got, 1)
	assert.Equal(t, pending.OrderNo, got[0].OrderNo)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPendingPayment, StatusPaid))
	assert.True(t, CanTransition(StatusPendingPayment, StatusPaymentTimeout))
	assert.False(t, CanTransition(StatusPaymentTimeout, StatusPendingPayment))
	assert.False(t, CanTransition(StatusPaid, StatusPaymentTimeout))
	// manual force deliver path
	assert.True(t, CanTransition(StatusPaymentTimeout, StatusPaid))
}
