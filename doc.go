// Package payssiongateway integrates the Payssion payment provider into a
// host e-commerce platform as a gateway plugin.
//
// # Overview
//
// Payssion hosts the payment page itself: creating a payment means signing
// a creation request, handing the payer's browser to the provider, and
// waiting for an asynchronous server-to-server notification that reports
// the final payment state. The two pieces with real correctness
// requirements live in the payssion package:
//
//   - The signature scheme: an MD5 hex digest over a pipe-joined, fixed
//     order field tuple bound to the merchant's shared secret. The same
//     scheme authorizes outbound creation requests (empty state slot) and
//     verifies inbound notifications (state included).
//   - The notification state machine: an unauthenticated callback whose
//     signature is the only trust anchor. Valid notifications move a
//     PENDING or WAITING transaction to APPROVED, WAITING or REFUSED;
//     invalid ones can only push it to REFUSED. Terminal states never
//     move again, and the endpoint acknowledges every delivery with an
//     empty HTTP 200 so the provider stops retrying.
//
// # Architecture
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│                 │    │                 │    │                 │
//	│  Host Platform  │◄──►│    Gateway      │◄──►│    Payssion     │
//	│   (checkout)    │    │    Service      │    │      API        │
//	│                 │    │                 │    │                 │
//	└─────────────────┘    └─────────────────┘    └─────────────────┘
//
// The gateway package holds the host-side contracts: the PaymentGateway
// capability interface, the transaction model with its version-checked
// store, and the customer notifier. The payssion package is the one
// registered implementation.
//
// # Quick Start
//
//	settings, err := config.DecodeGatewaySettings(blob)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	gw := payssion.New(settings, true, notifyURL, checkoutURL)
//	result, err := gw.Authorize(ctx, txn, gateway.AuthorizeValues{
//	    PaymentMethodID: "alipay_cn",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Send the payer to result.RedirectURL and wait for the notification.
package payssiongateway
