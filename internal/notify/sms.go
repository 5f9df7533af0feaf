// Package notify sends the SMS fallback summary after a call. Dispatch is
// best-effort: failures are logged by the pipeline and never abort it.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MaxBodyRunes is the messaging provider's practical body limit; longer
// summaries are truncated, not rejected.
const MaxBodyRunes = 1500

const defaultAPIBase = "https://api.twilio.com"

// Dispatcher posts messages to the Twilio REST API.
type Dispatcher struct {
	apiBase    string
	client     *http.Client
	accountSID string
	authToken  string
	fromNumber string
}

// NewDispatcher builds a dispatcher. Callers check credentials beforehand
// and skip construction entirely when any are missing.
func NewDispatcher(accountSID, authToken, fromNumber string) *Dispatcher {
	return &Dispatcher{
		apiBase:    defaultAPIBase,
		client:     &http.Client{Timeout: 15 * time.Second},
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
	}
}

// Send delivers one SMS, truncating the body to MaxBodyRunes first.
func (d *Dispatcher) Send(ctx context.Context, to, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("send sms: empty destination")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", d.fromNumber)
	form.Set("Body", Truncate(body))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", d.apiBase, url.PathEscape(d.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.SetBasicAuth(d.accountSID, d.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send sms: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// Truncate caps a message body at MaxBodyRunes.
func Truncate(body string) string {
	runes := []rune(body)
	if len(runes) <= MaxBodyRunes {
		return body
	}
	return string(runes[:MaxBodyRunes])
}
