package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/flawlesshq/payssion-gateway/infra/logger"
	"github.com/flawlesshq/payssion-gateway/payssion"
)

// NotifyHandler is the inbound edge of the trust boundary: it receives the
// provider's unauthenticated payment notifications, feeds them to the
// processor and acknowledges receipt. It never reports an error over HTTP;
// a non-200 response makes the provider retry delivery.
type NotifyHandler struct {
	processor   *payssion.NotificationProcessor
	checkoutURL string
}

// NewNotifyHandler creates a new notification handler
func NewNotifyHandler(processor *payssion.NotificationProcessor, checkoutURL string) *NotifyHandler {
	return &NotifyHandler{
		processor:   processor,
		checkoutURL: checkoutURL,
	}
}

// HandleNotification processes a server-to-server payment notification.
// The response is always an empty HTTP 200, whatever the internal outcome;
// failures surface in the audit log, not on the wire.
func (h *NotifyHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	params := parseNotificationParams(r)

	result, err := h.processor.Process(r.Context(), params)
	if err != nil {
		logger.Error("Notification processing failed", err, logger.LogContext{
			Provider:  "payssion",
			RequestID: r.Header.Get("X-Request-ID"),
			Fields: map[string]any{
				"order_id": params.OrderID,
				"state":    params.State,
			},
		})
	} else {
		logger.Info("Notification processed", logger.LogContext{
			Provider:  "payssion",
			RequestID: r.Header.Get("X-Request-ID"),
			Fields: map[string]any{
				"order_id": params.OrderID,
				"state":    params.State,
				"outcome":  string(result.Outcome),
			},
		})
	}

	w.WriteHeader(http.StatusOK)
}

// HandleReturn serves the payer's own browser coming back from the
// provider. The outcome arrives on the notification path, not here, so the
// browser is simply sent back to resume checkout.
func (h *NotifyHandler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")

	target := h.checkoutURL
	if orderID != "" {
		target = fmt.Sprintf("%s?t=%s", h.checkoutURL, url.QueryEscape(orderID))
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// parseNotificationParams collects the notification fields from POST form
// and query parameters. The provider delivers either way.
func parseNotificationParams(r *http.Request) payssion.NotificationParams {
	_ = r.ParseForm()

	get := func(key string) string {
		if v := r.Form.Get(key); v != "" {
			return v
		}
		return r.URL.Query().Get(key)
	}

	return payssion.NotificationParams{
		OrderID:   get("order_id"),
		PMID:      get("pm_id"),
		Amount:    get("amount"),
		Currency:  get("currency"),
		State:     get("state"),
		Signature: get("notify_sig"),
	}
}
