package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SIDHANTH-S/Voigent/internal/config"
)

const defaultAPIBase = "https://api.twilio.com"

// Client places outbound calls through Twilio's REST API.
type Client struct {
	accountSID string
	authToken  string
	from       string
	apiBase    string
	httpClient *http.Client
}

// Call is the subset of Twilio's call resource the caller cares about.
type Call struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	To     string `json:"to"`
	From   string `json:"from"`
}

func NewClient(cfg config.TwilioConfig) (*Client, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("twilio credentials are required")
	}
	if cfg.PhoneNumber == "" {
		return nil, fmt.Errorf("twilio phone number is required")
	}
	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.PhoneNumber,
		apiBase:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// SetAPIBase overrides the API endpoint (for testing).
func (c *Client) SetAPIBase(base string) {
	c.apiBase = strings.TrimRight(base, "/")
}

// StartCall dials a number and points the call at the voice webhook. The
// status callback keeps session cleanup in step with the carrier's view of
// the call.
func (c *Client) StartCall(ctx context.Context, to, webhookURL, statusCallbackURL string) (*Call, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Url", webhookURL)
	form.Set("Method", "POST")
	if statusCallbackURL != "" {
		form.Set("StatusCallback", statusCallbackURL)
		form.Set("StatusCallbackMethod", "POST")
		for _, ev := range []string{"initiated", "ringing", "answered", "completed"} {
			form.Add("StatusCallbackEvent", ev)
		}
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.apiBase, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build call request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read call response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("place call: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var call Call
	if err := json.Unmarshal(body, &call); err != nil {
		return nil, fmt.Errorf("parse call response: %w", err)
	}
	log.Printf("[twilio] call %s to %s: %s", call.SID, call.To, call.Status)
	return &call, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
