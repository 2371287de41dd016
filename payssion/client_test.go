package payssion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_EndpointSelection(t *testing.T) {
	if got := NewClient("k", "s", false).BaseURL(); got != apiLiveURL {
		t.Errorf("live BaseURL = %s, want %s", got, apiLiveURL)
	}
	if got := NewClient("k", "s", true).BaseURL(); got != apiSandboxURL {
		t.Errorf("sandbox BaseURL = %s, want %s", got, apiSandboxURL)
	}
}

func TestClient_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm() error = %v", err)
		}
		if got := r.PostForm.Get("api_key"); got != "KEY" {
			t.Errorf("api_key = %s, want KEY", got)
		}
		if got := r.PostForm.Get("order_id"); got != "T42" {
			t.Errorf("order_id = %s, want T42", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result_code":200,"todo":"redirect","redirect_url":"https://pay.example/x"}`))
	}))
	defer server.Close()

	client := NewClient("KEY", "SECRET", true)
	client.SetBaseURL(server.URL)

	resp, err := client.Create(context.Background(), CreateParams{
		Amount:   "10.00",
		Currency: "USD",
		PMID:     "alipay_cn",
		OrderID:  "T42",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.ResultCode != 200 {
		t.Errorf("ResultCode = %d, want 200", resp.ResultCode)
	}
	if resp.RedirectURL != "https://pay.example/x" {
		t.Errorf("RedirectURL = %s", resp.RedirectURL)
	}
}

func TestClient_CreateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient("KEY", "SECRET", true)
	client.SetBaseURL(server.URL)

	_, err := client.Create(context.Background(), CreateParams{OrderID: "T42"})
	if err == nil {
		t.Fatal("Create() expected error on HTTP 503")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error %q should carry the status code", err)
	}
}

func TestClient_CreateMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient("KEY", "SECRET", true)
	client.SetBaseURL(server.URL)

	if _, err := client.Create(context.Background(), CreateParams{OrderID: "T42"}); err == nil {
		t.Fatal("Create() expected error on non-JSON body")
	}
}

func TestClient_CreateHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient("KEY", "SECRET", true)
	client.SetBaseURL(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Create(ctx, CreateParams{OrderID: "T42"}); err == nil {
		t.Fatal("Create() expected error on cancelled context")
	}
}
