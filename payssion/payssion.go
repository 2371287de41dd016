package payssion

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/flawlesshq/payssion-gateway/gateway"
	"github.com/flawlesshq/payssion-gateway/infra/config"
	"github.com/flawlesshq/payssion-gateway/infra/logger"
)

// Gateway implements gateway.PaymentGateway for Payssion. Payssion hosts
// the payment page itself: Authorize creates the payment and hands back a
// redirect URL, and the final outcome arrives later on the notification
// endpoint.
type Gateway struct {
	settings    *config.GatewaySettings
	client      *Client
	notifyURL   string
	checkoutURL string
}

// ErrProviderRefused wraps the provider's error description when a payment
// creation request is rejected. The description is for the operator log;
// payers get a generic message.
var ErrProviderRefused = errors.New("payssion: payment creation refused")

// New creates a configured Payssion gateway.
func New(settings *config.GatewaySettings, sandbox bool, notifyURL, checkoutURL string) *Gateway {
	return &Gateway{
		settings:    settings,
		client:      NewClient(settings.APIKey, settings.SecretKey, sandbox),
		notifyURL:   notifyURL,
		checkoutURL: checkoutURL,
	}
}

// NewFromConfig builds the gateway from a registry configuration map.
func NewFromConfig(conf map[string]string) (gateway.PaymentGateway, error) {
	settings, err := config.GatewaySettingsFromMap(conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrConfiguration, err)
	}

	sandbox := conf["environment"] != "production"
	notifyURL := conf["notifyURL"]
	checkoutURL := conf["checkoutURL"]

	return New(settings, sandbox, notifyURL, checkoutURL), nil
}

// Client returns the underlying API client, mainly so tests can redirect it.
func (g *Gateway) Client() *Client {
	return g.client
}

// PaymentScreen resolves the merchant's enabled method codes against the
// catalog. The stored set only carries codes; display names are recovered
// here. Sorted for a stable checkout screen.
func (g *Gateway) PaymentScreen() ([]gateway.MethodOption, error) {
	var options []gateway.MethodOption

	if g.settings.AllEnabled {
		for code, name := range Methods() {
			options = append(options, gateway.MethodOption{Code: code, Name: name})
		}
	} else {
		for _, code := range g.settings.EnabledMethods {
			name, ok := MethodName(code)
			if !ok {
				continue
			}
			options = append(options, gateway.MethodOption{Code: code, Name: name})
		}
	}

	sort.Slice(options, func(i, j int) bool { return options[i].Name < options[j].Name })
	return options, nil
}

// Authorize submits the payment creation request and returns the provider's
// redirect URL. The transaction stays PENDING on provider error so the
// payer can retry.
func (g *Gateway) Authorize(ctx context.Context, txn *gateway.Transaction, values gateway.AuthorizeValues) (*gateway.AuthorizeResult, error) {
	if err := g.settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrConfiguration, err)
	}

	payerName := txn.Payer.Name
	if payerName == "" {
		payerName = "Anonymous"
	}

	params := CreateParams{
		Amount:      txn.Amount.Amount,
		Currency:    txn.Amount.Currency,
		PMID:        values.PaymentMethodID,
		OrderID:     txn.ID,
		PayerName:   payerName,
		PayerEmail:  txn.Payer.Email,
		Description: txn.Description,
		NotifyURL:   g.notifyURL,
		SuccessURL:  g.checkoutURL,
		RedirectURL: g.checkoutURL,
	}

	params.APISig = Sign(SignatureParams{
		APIKey:        g.settings.APIKey,
		PMID:          params.PMID,
		Amount:        params.Amount,
		Currency:      params.Currency,
		TransactionID: params.OrderID,
		SecretKey:     g.settings.SecretKey,
	}, false)

	resp, err := g.client.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("payssion: payment creation failed: %w", err)
	}

	if resp.ResultCode != 200 {
		logger.Error("Payssion refused payment creation", errors.New(resp.Description), logger.LogContext{
			Provider: "payssion",
			Fields: map[string]any{
				"transaction_id": txn.ID,
				"result_code":    resp.ResultCode,
			},
		})
		return nil, ErrProviderRefused
	}

	result := &gateway.AuthorizeResult{}
	if resp.Todo == "redirect" {
		result.RedirectURL = resp.RedirectURL
	}

	return result, nil
}

// Void is a no-op: Payssion supports neither refunds nor cancellation, so
// there is no gateway-side hold to release.
func (g *Gateway) Void(ctx context.Context, txn *gateway.Transaction) error {
	return nil
}

// Configure describes the gateway's settings form.
func (g *Gateway) Configure() []gateway.SettingsField {
	return []gateway.SettingsField{
		{Key: "api_key", Required: true},
		{Key: "secret_key", Required: true, Secret: true},
		{Key: "payment_methods", Required: true, Multiple: true},
	}
}
