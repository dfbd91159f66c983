package telephony

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SIDHANTH-S/Voigent/internal/config"
)

func testConfig() config.TwilioConfig {
	return config.TwilioConfig{
		AccountSID:  "AC123",
		AuthToken:   "secret",
		PhoneNumber: "+15550001111",
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(config.TwilioConfig{}); err == nil {
		t.Error("expected error without credentials")
	}
	if _, err := NewClient(config.TwilioConfig{AccountSID: "AC1", AuthToken: "x"}); err == nil {
		t.Error("expected error without phone number")
	}
	if _, err := NewClient(testConfig()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestStartCall(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		r.ParseForm()
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Call{SID: "CA900", Status: "queued", To: "+911234567890"})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	c.SetAPIBase(srv.URL)

	call, err := c.StartCall(context.Background(), "+911234567890",
		"https://example.com/voice", "https://example.com/voice/status")
	if err != nil {
		t.Fatal(err)
	}

	if call.SID != "CA900" || call.Status != "queued" {
		t.Errorf("call = %+v", call)
	}
	if gotPath != "/2010-04-01/Accounts/AC123/Calls.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUser != "AC123" || gotPass != "secret" {
		t.Errorf("basic auth = %s:%s", gotUser, gotPass)
	}
	if got := gotForm["To"]; len(got) != 1 || got[0] != "+911234567890" {
		t.Errorf("To = %v", got)
	}
	if got := gotForm["From"]; len(got) != 1 || got[0] != "+15550001111" {
		t.Errorf("From = %v", got)
	}
	if got := gotForm["Url"]; len(got) != 1 || got[0] != "https://example.com/voice" {
		t.Errorf("Url = %v", got)
	}
	if got := gotForm["StatusCallback"]; len(got) != 1 || got[0] != "https://example.com/voice/status" {
		t.Errorf("StatusCallback = %v", got)
	}
	if got := gotForm["StatusCallbackEvent"]; len(got) != 4 {
		t.Errorf("StatusCallbackEvent = %v, want four events", got)
	}
}

func TestStartCall_NoStatusCallback(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = r.PostForm
		json.NewEncoder(w).Encode(Call{SID: "CA901"})
	}))
	defer srv.Close()

	c, _ := NewClient(testConfig())
	c.SetAPIBase(srv.URL)

	if _, err := c.StartCall(context.Background(), "+911234567890", "https://example.com/voice", ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := gotForm["StatusCallback"]; ok {
		t.Error("StatusCallback should be omitted when unset")
	}
}

func TestStartCall_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid number"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c, _ := NewClient(testConfig())
	c.SetAPIBase(srv.URL)

	if _, err := c.StartCall(context.Background(), "bad", "https://example.com/voice", ""); err == nil {
		t.Error("expected error from API failure")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("0123456789abc", 10); got != "0123456789..." {
		t.Errorf("truncate = %q", got)
	}
}
