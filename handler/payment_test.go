package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flawlesshq/payssion-gateway/gateway"
	"github.com/flawlesshq/payssion-gateway/infra/response"
	"github.com/flawlesshq/payssion-gateway/payssion"
	"github.com/go-playground/validator/v10"
)

type fakeAuthGateway struct {
	result  *gateway.AuthorizeResult
	err     error
	options []gateway.MethodOption
}

func (f *fakeAuthGateway) PaymentScreen() ([]gateway.MethodOption, error) { return f.options, nil }
func (f *fakeAuthGateway) Authorize(ctx context.Context, txn *gateway.Transaction, values gateway.AuthorizeValues) (*gateway.AuthorizeResult, error) {
	return f.result, f.err
}
func (f *fakeAuthGateway) Void(ctx context.Context, txn *gateway.Transaction) error { return nil }
func (f *fakeAuthGateway) Configure() []gateway.SettingsField                       { return nil }

func authorizeRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return resp
}

func TestAuthorize_Success(t *testing.T) {
	store := &singleTxnStore{txn: &gateway.Transaction{
		ID:     "T1",
		Amount: gateway.Money{Amount: "10.00", Currency: "USD"},
		Status: gateway.StatusPending,
	}}
	gw := &fakeAuthGateway{result: &gateway.AuthorizeResult{RedirectURL: "https://pay.example/x"}}
	h := NewPaymentHandler(gw, store, validator.New())

	rec := httptest.NewRecorder()
	h.Authorize(rec, authorizeRequest(`{"transactionId":"T1","pmId":"alipay_cn"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Error("Success = false, want true")
	}
	data, ok := resp.Data.(map[string]any)
	if !ok || data["redirectUrl"] != "https://pay.example/x" {
		t.Errorf("Data = %v, want redirectUrl", resp.Data)
	}
}

func TestAuthorize_MalformedBody(t *testing.T) {
	h := NewPaymentHandler(&fakeAuthGateway{}, &singleTxnStore{}, validator.New())

	rec := httptest.NewRecorder()
	h.Authorize(rec, authorizeRequest(`{not json`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuthorize_MissingFields(t *testing.T) {
	h := NewPaymentHandler(&fakeAuthGateway{}, &singleTxnStore{}, validator.New())

	tests := []string{
		`{}`,
		`{"transactionId":"T1"}`,
		`{"pmId":"alipay_cn"}`,
	}

	for _, body := range tests {
		rec := httptest.NewRecorder()
		h.Authorize(rec, authorizeRequest(body))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestAuthorize_UnknownTransaction(t *testing.T) {
	h := NewPaymentHandler(&fakeAuthGateway{}, &singleTxnStore{}, validator.New())

	rec := httptest.NewRecorder()
	h.Authorize(rec, authorizeRequest(`{"transactionId":"ghost","pmId":"alipay_cn"}`))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAuthorize_GatewayErrors(t *testing.T) {
	store := &singleTxnStore{txn: &gateway.Transaction{
		ID:     "T1",
		Amount: gateway.Money{Amount: "10.00", Currency: "USD"},
		Status: gateway.StatusPending,
	}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unconfigured gateway", gateway.ErrConfiguration, http.StatusInternalServerError},
		{"provider refused", payssion.ErrProviderRefused, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPaymentHandler(&fakeAuthGateway{err: tt.err}, store, validator.New())

			rec := httptest.NewRecorder()
			h.Authorize(rec, authorizeRequest(`{"transactionId":"T1","pmId":"alipay_cn"}`))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeEnvelope(t, rec)
			if resp.Success {
				t.Error("Success = true, want false")
			}
			if strings.Contains(resp.Message+resp.Error, tt.err.Error()) && tt.wantStatus == http.StatusBadGateway {
				t.Error("provider error detail must not reach the payer")
			}
		})
	}
}

func TestPaymentMethods(t *testing.T) {
	gw := &fakeAuthGateway{options: []gateway.MethodOption{
		{Code: "alipay_cn", Name: "Alipay"},
		{Code: "sofort", Name: "SOFORT Banking"},
	}}
	h := NewPaymentHandler(gw, &singleTxnStore{}, validator.New())

	rec := httptest.NewRecorder()
	h.PaymentMethods(rec, httptest.NewRequest(http.MethodGet, "/v1/payment/methods", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	data, ok := resp.Data.([]any)
	if !ok || len(data) != 2 {
		t.Errorf("Data = %v, want 2 method options", resp.Data)
	}
}
