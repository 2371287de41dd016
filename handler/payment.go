package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/flawlesshq/payssion-gateway/gateway"
	"github.com/flawlesshq/payssion-gateway/infra/logger"
	"github.com/flawlesshq/payssion-gateway/infra/response"
	"github.com/flawlesshq/payssion-gateway/payssion"
	"github.com/go-playground/validator/v10"
)

// payerErrorMessage is what the payer sees when the provider rejects the
// creation request. The provider's detail goes to the operator log only.
const payerErrorMessage = "An error has occurred, please contact an administrator"

// AuthorizeRequest is the checkout submission: which transaction to pay and
// with which payment method.
type AuthorizeRequest struct {
	TransactionID   string `json:"transactionId" validate:"required"`
	PaymentMethodID string `json:"pmId" validate:"required"`
}

// PaymentHandler drives the payment creation flow through the configured
// gateway.
type PaymentHandler struct {
	gateway  gateway.PaymentGateway
	store    gateway.TransactionStore
	validate *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(gw gateway.PaymentGateway, store gateway.TransactionStore, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		gateway:  gw,
		store:    store,
		validate: validate,
	}
}

// Authorize handles checkout submissions: it authorizes the payment with
// the provider and responds with the redirect URL for the payer's browser.
func (h *PaymentHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req AuthorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	txn, err := h.store.Load(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Transaction not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to load transaction", err)
		return
	}

	result, err := h.gateway.Authorize(ctx, txn, gateway.AuthorizeValues{
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrConfiguration):
			response.Error(w, http.StatusInternalServerError, "Payment gateway is not configured", nil)
		case errors.Is(err, payssion.ErrProviderRefused):
			// Transaction stays PENDING so the payer can retry.
			response.Error(w, http.StatusBadGateway, payerErrorMessage, nil)
		default:
			logger.Error("Payment authorization failed", err, logger.LogContext{
				Provider: "payssion",
				Fields: map[string]any{
					"transaction_id": req.TransactionID,
				},
			})
			response.Error(w, http.StatusInternalServerError, payerErrorMessage, nil)
		}
		return
	}

	if result.RedirectURL != "" {
		response.Success(w, http.StatusOK, "Redirect payer to provider", map[string]string{
			"redirectUrl": result.RedirectURL,
		})
		return
	}

	response.Success(w, http.StatusOK, "Payment created", result)
}

// PaymentMethods returns the payment method options for the checkout screen.
func (h *PaymentHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	options, err := h.gateway.PaymentScreen()
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to resolve payment methods", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment methods", options)
}
