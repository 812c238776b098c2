package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/fybot/airtime-orders/internal/orders"
	"github.com/fybot/airtime-orders/internal/settings"
)

const maxAdminRows = 1000

type Notifier interface {
	Ready() bool
	Send(ctx context.Context, text string) error
}

// AdminHandler is the operator surface: list/search orders, runtime
// settings, alert test. Guarded by a shared token.
type AdminHandler struct {
	Store    *orders.Store
	Settings *settings.Store
	Notifier Notifier
	Token    string
	Log      logrus.FieldLogger
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{order_no}", h.getOrder)
		r.Get("/settings", h.getSettings)
		r.Post("/settings", h.updateSettings)
		r.Post("/alert", h.sendAlert)
	})
}

func (h *AdminHandler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if h.Token == "" || token != h.Token {
			writeJSON(w, http.StatusUnauthorized, fail("Unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter := orders.ParseFilter(r.URL.Query().Get("filter"))
	q := r.URL.Query().Get("q")

	list := h.Store.Search(filter, q)
	if len(list) > maxAdminRows {
		list = list[:maxAdminRows]
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"orders": list}))
}

func (h *AdminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, found := h.Store.FindByOrderNo(chi.URLParam(r, "order_no"))
	if !found {
		writeJSON(w, http.StatusOK, fail("Not found"))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"order": o}))
}

func (h *AdminHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ok(map[string]any{"settings": h.Settings.All()}))
}

func (h *AdminHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeJSON(w, http.StatusOK, fail("invalid json"))
		return
	}
	if err := h.Settings.SetAll(updates); err != nil {
		h.Log.WithError(err).Error("save settings")
		writeJSON(w, http.StatusOK, fail("failed to save settings"))
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"message": "Saved"}))
}

func (h *AdminHandler) sendAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Text == "" {
		req.Text = "Test alert"
	}
	if h.Notifier == nil || !h.Notifier.Ready() {
		writeJSON(w, http.StatusOK, fail("notification channel not ready"))
		return
	}
	if err := h.Notifier.Send(r.Context(), req.Text); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, ok(nil))
}
