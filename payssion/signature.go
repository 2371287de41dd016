package payssion

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SignatureParams is the ordered field tuple a Payssion signature binds to
// the merchant's shared secret. Amount is the string-formatted decimal;
// signing a float-formatted value would drift from what the provider signs.
//
// Field values must never contain '|': the Payssion protocol joins the
// tuple with a bare pipe and defines no escaping.
type SignatureParams struct {
	APIKey        string
	PMID          string
	Amount        string
	Currency      string
	TransactionID string
	State         string
	SecretKey     string
}

// Sign computes the Payssion request signature: the MD5 hex digest of the
// pipe-joined tuple [apiKey, pmId, amount, currency, transactionId,
// state, secretKey]. For outbound payment creation (ipn false) the state
// slot is left empty; for notification verification (ipn true) it carries
// the provider-reported payment state.
//
// MD5 is what the Payssion wire protocol mandates; substituting a stronger
// hash breaks interoperability.
func Sign(p SignatureParams, ipn bool) string {
	state := ""
	if ipn {
		state = p.State
	}

	joined := strings.Join([]string{
		p.APIKey,
		p.PMID,
		p.Amount,
		p.Currency,
		p.TransactionID,
		state,
		p.SecretKey,
	}, "|")

	sum := md5.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// VerifySignature reports whether candidate matches the notification
// signature for p. The comparison is constant time, so a caller probing the
// endpoint learns nothing from response timing. Malformed or missing fields
// simply produce a digest that fails to match; verification never fails
// open.
func VerifySignature(p SignatureParams, candidate string) bool {
	expected := Sign(p, true)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}
