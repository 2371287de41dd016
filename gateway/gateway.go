// Package gateway defines the host-side contracts a payment gateway plugin
// builds on: the capability interface gateways implement, the transaction
// model whose lifecycle notifications drive, and the persistence and
// customer-notification collaborators supplied by the hosting platform.
package gateway

import (
	"context"
	"errors"
)

// Money is an exact decimal amount with its ISO currency code. The amount is
// kept as a string end to end; provider signatures are computed over the
// literal decimal text and a float round-trip would change the digest.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

var (
	// ErrConfiguration indicates the gateway settings are missing or
	// malformed. Payment creation must not proceed with empty keys.
	ErrConfiguration = errors.New("gateway: configuration missing or invalid")

	// ErrNotFound indicates the referenced transaction does not exist.
	ErrNotFound = errors.New("gateway: transaction not found")

	// ErrVersionConflict indicates a concurrent writer saved the
	// transaction between load and save.
	ErrVersionConflict = errors.New("gateway: transaction version conflict")
)

// AuthorizeValues carries the checkout form values a gateway consumes when
// authorizing a payment. For Payssion this is the selected payment method.
type AuthorizeValues struct {
	PaymentMethodID string `json:"pmId" validate:"required"`
}

// AuthorizeResult is the outcome of a successful payment authorization.
type AuthorizeResult struct {
	// RedirectURL is the provider-hosted page the payer's browser must be
	// sent to, when the provider requests a redirect.
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// SettingsField describes one field of a gateway's configuration surface,
// used by the host to render its admin settings form.
type SettingsField struct {
	Key      string `json:"key"`
	Required bool   `json:"required"`
	Secret   bool   `json:"secret"`
	Multiple bool   `json:"multiple,omitempty"`
}

// MethodOption is a selectable payment method on the checkout screen.
type MethodOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PaymentGateway is the capability interface a provider plugin implements.
// It replaces host-class inheritance: the host holds one variant per
// configured gateway and drives checkout and lifecycle through it.
type PaymentGateway interface {
	// PaymentScreen returns the payment method options to offer at
	// checkout, resolved against the merchant's enabled set.
	PaymentScreen() ([]MethodOption, error)

	// Authorize submits a payment creation request for the transaction and
	// returns where to send the payer. The call is synchronous and single
	// attempt; an automatic retry could double-charge.
	Authorize(ctx context.Context, txn *Transaction, values AuthorizeValues) (*AuthorizeResult, error)

	// Void cancels any gateway-side hold for the transaction.
	Void(ctx context.Context, txn *Transaction) error

	// Configure returns the gateway's settings form fields.
	Configure() []SettingsField
}
