package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fybot/airtime-orders/internal/orders"
	"github.com/fybot/airtime-orders/internal/shadow"
)

// One queued post-initiation workflow. Jobs are drained by a fixed worker
// pool; an accepted job always runs to completion. On shutdown, jobs
// already in flight are finished, not cancelled.
type job struct {
	orderNo    string
	checkoutID string
	timeout    time.Duration
}

// Start spins up the worker pool. Pair with Close + WaitClosed on
// shutdown so queued workflows drain before the process exits.
func (e *Engine) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range e.jobs {
				e.runJob(j)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(e.closeCh)
	}()
}

// Close stops intake; workers finish the queue and exit.
func (e *Engine) Close() { e.closeOnce.Do(func() { close(e.jobs) }) }

// WaitClosed blocks until every worker has drained.
func (e *Engine) WaitClosed() { <-e.closeCh }

func (e *Engine) enqueue(j job) { e.jobs <- j }

func (e *Engine) runJob(j job) {
	// Detached from any caller: outbound calls use the background context
	// so a finished HTTP request can't abort the workflow.
	ctx := context.Background()
	log := e.log.WithField("order_no", j.orderNo)

	paid := e.pollPayment(ctx, j, log)
	if paid {
		e.notify(ctx, fmt.Sprintf("Payment confirmed for %s. Delivering airtime...", j.orderNo))
		res, err := e.deliverAirtime(ctx, j.orderNo)
		switch {
		case err != nil:
			log.WithError(err).Error("fulfillment update failed")
		case res.Succeeded():
			e.notify(ctx, fmt.Sprintf("Airtime delivered for %s", j.orderNo))
		default:
			e.notify(ctx, fmt.Sprintf("Airtime delivery failed for %s", j.orderNo))
		}
		return
	}

	if o, ok := e.store.FindByOrderNo(j.orderNo); ok && o.Status == orders.StatusPaymentFailed {
		e.notify(ctx, fmt.Sprintf("Payment failed for %s", j.orderNo))
		return
	}

	// Timeout reconciliation. The status re-check runs inside the store
	// lock: a confirmation that landed after the last poll wins and the
	// order stays paid.
	timedOut := false
	_, err := e.store.UpdateByOrderNo(j.orderNo, func(x *orders.Order) {
		if x.Status == orders.StatusPendingPayment {
			x.Status = orders.StatusPaymentTimeout
			timedOut = true
		}
	})
	if err != nil {
		log.WithError(err).Error("timeout reconciliation failed")
		return
	}
	if timedOut {
		e.invalidate(ctx, j.orderNo)
		e.publish(orders.EventPaymentTimeout, j.orderNo, orders.PaymentTimeoutPayload{
			OrderNo:    j.orderNo,
			CheckoutID: j.checkoutID,
			Attempts:   e.attempts(j.timeout),
		})
		e.notify(ctx, fmt.Sprintf("Payment timeout for %s", j.orderNo))
	}
}

// pollPayment queries checkout status at a fixed interval until a
// terminal signal or the attempt budget runs out. Transient query errors
// count as "still pending": they consume the attempt but never abort.
func (e *Engine) pollPayment(ctx context.Context, j job, log logrus.FieldLogger) bool {
	attempts := e.attempts(j.timeout)
	for i := 0; i < attempts; i++ {
		time.Sleep(e.interval)

		res := e.payments.Status(ctx, e.shadowCreds(), j.checkoutID)
		outcome, tx := res.Interpret()
		switch outcome {
		case shadow.OutcomePaid:
			if _, err := e.markPaid(ctx, j.checkoutID, tx); err != nil {
				e.log.WithError(err).WithField("order_no", j.orderNo).Error("mark paid failed")
			}
			e.publish(orders.EventPaymentConfirmed, j.orderNo, orders.PaymentConfirmedPayload{
				OrderNo:         j.orderNo,
				CheckoutID:      j.checkoutID,
				TransactionCode: tx,
			})
			return true
		case shadow.OutcomeFailed:
			if _, err := e.markPaymentFailed(ctx, j.checkoutID); err != nil {
				e.log.WithError(err).WithField("order_no", j.orderNo).Error("mark payment failed failed")
			}
			e.publish(orders.EventPaymentFailed, j.orderNo, orders.PaymentFailedPayload{
				OrderNo:    j.orderNo,
				CheckoutID: j.checkoutID,
			})
			return false
		}
		if res.Message != "" {
			log.Debugf("poll %d/%d pending: %s", i+1, attempts, res.Message)
		}
	}
	return false
}

func (e *Engine) attempts(timeout time.Duration) int {
	n := int(math.Ceil(float64(timeout) / float64(e.interval)))
	if n < 1 {
		n = 1
	}
	return n
}
