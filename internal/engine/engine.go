// Package engine drives the order lifecycle: create + charge initiation
// on the caller's request, then payment polling, fulfillment and
// reconciliation on a background worker pool. The order store is the
// single source of truth for every step.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	kafkax "github.com/fybot/airtime-orders/internal/kafka"
	"github.com/fybot/airtime-orders/internal/msisdn"
	"github.com/fybot/airtime-orders/internal/orders"
	"github.com/fybot/airtime-orders/internal/settings"
	"github.com/fybot/airtime-orders/internal/shadow"
	"github.com/fybot/airtime-orders/internal/statum"
)

type PaymentGateway interface {
	Initiate(ctx context.Context, creds shadow.Credentials, accountID, phone string, amount decimal.Decimal, reference, description string) shadow.InitiateResult
	Status(ctx context.Context, creds shadow.Credentials, checkoutID string) shadow.StatusResult
}

type AirtimeGateway interface {
	Deliver(ctx context.Context, creds statum.Credentials, phone string, amount decimal.Decimal) statum.DeliveryResult
}

// Notifier is the best-effort operator channel. Ready distinguishes
// "channel down, alert skipped" from "alert attempted and failed".
type Notifier interface {
	Ready() bool
	Send(ctx context.Context, text string) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Cache drops read-path copies of an order after a transition so
// get_order never serves a stale status for the full TTL.
type Cache interface {
	Invalidate(ctx context.Context, orderNo string)
}

// ValidationError rejects a purchase request before any order exists.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

// initError marks a created order whose charge could not be started.
type initError struct{ msg string }

func (e *initError) Error() string { return e.msg }

func IsValidation(err error) bool { _, ok := err.(*ValidationError); return ok }

type Config struct {
	Store    *orders.Store
	Settings *settings.Store
	Payments PaymentGateway
	Airtime  AirtimeGateway
	Notifier Notifier
	Events   Publisher // optional
	Cache    Cache     // optional

	ServiceName  string
	PollInterval time.Duration // default 5s
	Workers      int           // default 8
	QueueSize    int           // default 256
	Log          logrus.FieldLogger
}

type Engine struct {
	store    *orders.Store
	settings *settings.Store
	payments PaymentGateway
	airtime  AirtimeGateway
	notifier Notifier
	events   Publisher
	cache    Cache
	service  string
	interval time.Duration
	log      logrus.FieldLogger

	jobs      chan job
	workers   int
	closeOnce sync.Once
	closeCh   chan struct{}
}

func New(cfg Config) *Engine {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	return &Engine{
		store:    cfg.Store,
		settings: cfg.Settings,
		payments: cfg.Payments,
		airtime:  cfg.Airtime,
		notifier: cfg.Notifier,
		events:   cfg.Events,
		cache:    cfg.Cache,
		service:  cfg.ServiceName,
		interval: cfg.PollInterval,
		log:      cfg.Log,
		jobs:     make(chan job, cfg.QueueSize),
		workers:  cfg.Workers,
		closeCh:  make(chan struct{}),
	}
}

// CreateOrder validates the request, persists a pending order and fires
// the STK push. On a successful push the post-initiation workflow is
// queued and the call returns immediately; polling happens off-caller.
// pollOverride 0 uses the configured poll window.
func (e *Engine) CreateOrder(ctx context.Context, payerRaw, recipientRaw string, amount decimal.Decimal, pollOverride time.Duration) (orders.Order, error) {
	min, max := e.settings.MinAmount(), e.settings.MaxAmount()
	if !orders.ValidAmount(amount, min, max) {
		return orders.Order{}, &ValidationError{
			msg: fmt.Sprintf("Amount must be between KES %s and KES %s", min.String(), max.String()),
		}
	}

	payer := msisdn.Normalize(payerRaw)
	recipient := msisdn.Normalize(recipientRaw)
	if !msisdn.IsCanonical(payer) || !msisdn.IsCanonical(recipient) {
		return orders.Order{}, &ValidationError{
			msg: "Invalid Kenyan phone numbers. Use 07.. or 254.. formats.",
		}
	}

	discount := e.settings.DiscountPercent()
	o := &orders.Order{
		ID:              uuid.NewString(),
		PayerNumber:     payer,
		RecipientNumber: recipient,
		Amount:          amount,
		AmountPayable:   orders.Payable(amount, discount),
		DiscountPercent: discount,
		Status:          orders.StatusPendingPayment,
	}
	if err := e.store.Create(o); err != nil {
		return orders.Order{}, err
	}

	e.publish(orders.EventOrderCreated, o.OrderNo, orders.OrderCreatedPayload{
		OrderNo:         o.OrderNo,
		PayerNumber:     o.PayerNumber,
		RecipientNumber: o.RecipientNumber,
		Amount:          o.Amount,
		AmountPayable:   o.AmountPayable,
	})
	e.notify(ctx, fmt.Sprintf("New order %s: payer +%s, recipient +%s, amount KES %s (payable KES %s)",
		o.OrderNo, o.PayerNumber, o.RecipientNumber, o.Amount.StringFixed(2), o.AmountPayable.StringFixed(2)))

	res := e.payments.Initiate(ctx, e.shadowCreds(), e.settings.Get(settings.KeyShadowAccountID),
		o.PayerNumber, o.AmountPayable, o.OrderNo, "Airtime payment "+o.OrderNo)
	if !res.Success {
		updated, err := e.store.UpdateByOrderNo(o.OrderNo, func(x *orders.Order) {
			x.Status = orders.StatusFailedPaymentInit
		})
		if err != nil {
			return *o, err
		}
		e.invalidate(ctx, o.OrderNo)
		e.publish(orders.EventPaymentInitFailed, o.OrderNo, orders.PaymentInitFailedPayload{
			OrderNo: o.OrderNo,
			Message: res.Message,
		})
		msg := res.Message
		if msg == "" {
			msg = "Unknown"
		}
		return updated, &initError{msg: "Failed to send STK: " + msg}
	}

	updated, err := e.store.UpdateByOrderNo(o.OrderNo, func(x *orders.Order) {
		x.CheckoutID = res.CheckoutRequestID
		x.MerchantID = res.MerchantRequestID
	})
	if err != nil {
		return *o, err
	}

	timeout := pollOverride
	if timeout <= 0 {
		timeout = time.Duration(e.settings.PollSeconds()) * time.Second
	}
	e.enqueue(job{orderNo: updated.OrderNo, checkoutID: updated.CheckoutID, timeout: timeout})
	return updated, nil
}

// CheckStatus is the manual reconciliation path: one status query, order
// updated if the gateway reports a terminal outcome. Also how operators
// recover orders left pending by a restart.
func (e *Engine) CheckStatus(ctx context.Context, checkoutID string) (orders.Status, shadow.StatusResult, error) {
	res := e.payments.Status(ctx, e.shadowCreds(), checkoutID)
	switch outcome, tx := res.Interpret(); outcome {
	case shadow.OutcomePaid:
		o, err := e.markPaid(ctx, checkoutID, tx)
		if err != nil {
			return "", res, err
		}
		return o.Status, res, nil
	case shadow.OutcomeFailed:
		o, err := e.markPaymentFailed(ctx, checkoutID)
		if err != nil {
			return "", res, err
		}
		return o.Status, res, nil
	}
	return orders.StatusPendingPayment, res, nil
}

// ForceDeliver coerces the order to paid if needed and re-runs delivery.
// Deliberately not deduplicated: calling it twice tops up twice and the
// stored outcome is overwritten each time.
func (e *Engine) ForceDeliver(ctx context.Context, orderNo string) (statum.DeliveryResult, error) {
	o, ok := e.store.FindByOrderNo(orderNo)
	if !ok {
		return statum.DeliveryResult{}, orders.ErrNotFound
	}
	if o.Status != orders.StatusPaid {
		if _, err := e.store.UpdateByOrderNo(orderNo, func(x *orders.Order) {
			x.Status = orders.StatusPaid
		}); err != nil {
			return statum.DeliveryResult{}, err
		}
		e.invalidate(ctx, orderNo)
	}
	return e.deliverAirtime(ctx, orderNo)
}

// deliverAirtime runs fulfillment once and records outcome + raw provider
// response for audit regardless of result.
func (e *Engine) deliverAirtime(ctx context.Context, orderNo string) (statum.DeliveryResult, error) {
	o, ok := e.store.FindByOrderNo(orderNo)
	if !ok {
		return statum.DeliveryResult{}, orders.ErrNotFound
	}

	res := e.airtime.Deliver(ctx, e.statumCreds(), o.RecipientNumber, o.Amount)
	status := orders.AirtimeDeliveryFailed
	if res.Succeeded() {
		status = orders.AirtimeDelivered
	}
	if _, err := e.store.UpdateByOrderNo(orderNo, func(x *orders.Order) {
		x.AirtimeStatus = status
		x.AirtimeResponse = res.Raw
	}); err != nil {
		return res, err
	}
	e.invalidate(ctx, orderNo)

	event := orders.EventAirtimeDelivered
	if status == orders.AirtimeDeliveryFailed {
		event = orders.EventAirtimeDeliveryErr
	}
	e.publish(event, orderNo, orders.AirtimeDeliveryPayload{
		OrderNo:         orderNo,
		RecipientNumber: o.RecipientNumber,
		Amount:          o.Amount,
		Delivered:       status == orders.AirtimeDelivered,
	})
	return res, nil
}

func (e *Engine) markPaid(ctx context.Context, checkoutID, tx string) (orders.Order, error) {
	o, err := e.store.UpdateByCheckout(checkoutID, func(x *orders.Order) {
		if !orders.CanTransition(x.Status, orders.StatusPaid) {
			return
		}
		x.Status = orders.StatusPaid
		if tx != "" {
			x.TransactionCode = tx
		}
	})
	if err != nil {
		return o, err
	}
	e.invalidate(ctx, o.OrderNo)
	return o, nil
}

func (e *Engine) markPaymentFailed(ctx context.Context, checkoutID string) (orders.Order, error) {
	o, err := e.store.UpdateByCheckout(checkoutID, func(x *orders.Order) {
		if x.Status == orders.StatusPendingPayment {
			x.Status = orders.StatusPaymentFailed
		}
	})
	if err != nil {
		return o, err
	}
	e.invalidate(ctx, o.OrderNo)
	return o, nil
}

func (e *Engine) shadowCreds() shadow.Credentials {
	return shadow.Credentials{
		APIKey:    e.settings.Get(settings.KeyShadowAPIKey),
		APISecret: e.settings.Get(settings.KeyShadowAPISecret),
	}
}

func (e *Engine) statumCreds() statum.Credentials {
	return statum.Credentials{
		ConsumerKey:    e.settings.Get(settings.KeyStatumConsumerKey),
		ConsumerSecret: e.settings.Get(settings.KeyStatumConsumerSecret),
	}
}

func (e *Engine) invalidate(ctx context.Context, orderNo string) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, orderNo)
	}
}

func (e *Engine) notify(ctx context.Context, text string) {
	if e.notifier == nil || !e.notifier.Ready() {
		return
	}
	if err := e.notifier.Send(ctx, text); err != nil {
		e.log.WithError(err).Warn("operator alert failed")
	}
}

func (e *Engine) publish(eventType, orderNo string, payload any) {
	if e.events == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.service,
		CorrelationID: orderNo,
		Payload:       kafkax.MustMarshal(payload),
	}
	e.events.Publish(orders.PartitionKey(orderNo), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
