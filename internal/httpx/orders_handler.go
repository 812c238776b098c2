package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fybot/airtime-orders/internal/engine"
	"github.com/fybot/airtime-orders/internal/orders"
	"github.com/fybot/airtime-orders/internal/redisx"
	"github.com/fybot/airtime-orders/internal/settings"
)

// OrdersHandler exposes the bot-facing API. Every endpoint answers the
// uniform {success, ...} envelope with HTTP 200; expected failures ride
// in the body, not the status code.
type OrdersHandler struct {
	Engine   *engine.Engine
	Store    *orders.Store
	Settings *settings.Store
	Redis    *redis.Client // optional order cache
	Log      logrus.FieldLogger
}

type InitiateReq struct {
	PayerNumber     string `json:"payer_number"`
	MpesaNumber     string `json:"mpesa_number"` // alias used by the bot flows
	RecipientNumber string `json:"recipient_number"`
	// raw, bukan json.Number: the bot sends both 100 and "100", and a
	// junk string must answer "invalid amount", not a decode error
	Amount json.RawMessage `json:"amount"`
}

type OrderNoReq struct {
	OrderNo string `json:"order_no"`
}

type CheckStatusReq struct {
	CheckoutRequestID string `json:"checkout_request_id"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/api/initiate", h.initiate)
	r.Post("/api/check_status", h.checkStatus)
	r.Post("/api/deliver", h.deliver)
	r.Post("/api/get_order", h.getOrder)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(extra map[string]any) map[string]any {
	out := map[string]any{"success": true}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func fail(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}

func (h *OrdersHandler) initiate(w http.ResponseWriter, r *http.Request) {
	var req InitiateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, fail("invalid json"))
		return
	}

	payer := req.PayerNumber
	if payer == "" {
		payer = req.MpesaNumber
	}
	recipient := req.RecipientNumber
	if recipient == "" {
		recipient = payer
	}
	raw := strings.TrimSpace(strings.Trim(string(req.Amount), `"`))
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		writeJSON(w, http.StatusOK, fail("invalid amount"))
		return
	}

	o, err := h.Engine.CreateOrder(r.Context(), payer, recipient, amount, 0)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	h.cacheOrder(r, o)
	writeJSON(w, http.StatusOK, ok(map[string]any{
		"message":              "STK push sent",
		"order_no":             o.OrderNo,
		"checkout_request_id":  o.CheckoutID,
		"amount_payable":       o.AmountPayable,
		"payment_poll_seconds": h.Settings.PollSeconds(),
	}))
}

func (h *OrdersHandler) checkStatus(w http.ResponseWriter, r *http.Request) {
	var req CheckStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CheckoutRequestID == "" {
		writeJSON(w, http.StatusOK, fail("Missing checkout_request_id"))
		return
	}

	status, raw, err := h.Engine.CheckStatus(r.Context(), req.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeJSON(w, http.StatusOK, fail("Order not found"))
			return
		}
		h.Log.WithError(err).Error("check status")
		writeJSON(w, http.StatusOK, fail("internal error"))
		return
	}

	out := map[string]any{"raw": raw}
	switch status {
	case orders.StatusPaid:
		_, tx := raw.Interpret()
		out["status"] = "paid"
		out["transaction_code"] = tx
	case orders.StatusPaymentFailed:
		out["status"] = "payment_failed"
	default:
		out["status"] = "pending"
	}
	writeJSON(w, http.StatusOK, ok(out))
}

func (h *OrdersHandler) deliver(w http.ResponseWriter, r *http.Request) {
	var req OrderNoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderNo == "" {
		writeJSON(w, http.StatusOK, fail("Missing order_no"))
		return
	}

	res, err := h.Engine.ForceDeliver(r.Context(), req.OrderNo)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusOK, fail("Order not found"))
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("force deliver")
		writeJSON(w, http.StatusOK, fail("internal error"))
		return
	}
	if res.Succeeded() {
		writeJSON(w, http.StatusOK, ok(map[string]any{"message": "Airtime delivered", "statum": res}))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Delivery failed", "statum": res})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderNoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderNo == "" {
		writeJSON(w, http.StatusOK, fail("Missing order_no"))
		return
	}

	// cache dulu, fallback store
	key := fmt.Sprintf(redisx.KeyOrder, req.OrderNo)
	if h.Redis != nil {
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, ok(map[string]any{"order": json.RawMessage(s)}))
			return
		}
	}

	o, found := h.Store.FindByOrderNo(req.OrderNo)
	if !found {
		writeJSON(w, http.StatusOK, fail("Order not found"))
		return
	}
	h.cacheOrder(r, o)
	writeJSON(w, http.StatusOK, ok(map[string]any{"order": o}))
}

func (h *OrdersHandler) cacheOrder(r *http.Request, o orders.Order) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrder, o.OrderNo)
	_ = h.Redis.Set(r.Context(), key, b, redisx.TTLOrderCache).Err()
}
