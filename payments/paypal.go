package payments

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// PayPalProvider is the pull-style provider: after the buyer approves the
// order on the PayPal side, the client calls back and we capture explicitly.
// No webhook path.
type PayPalProvider struct {
	client       *resty.Client
	clientID     string
	clientSecret string

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewPayPalProvider(apiURL, clientID, clientSecret string, timeout time.Duration) *PayPalProvider {
	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(timeout)
	return &PayPalProvider{client: client, clientID: clientID, clientSecret: clientSecret}
}

func (p *PayPalProvider) Name() string { return "paypal" }

type paypalToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached OAuth token, refreshing when close to expiry.
func (p *PayPalProvider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.tokenExp) {
		return p.token, nil
	}

	var out paypalToken
	resp, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.clientID, p.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&out).
		Post("/v1/oauth2/token")
	if err != nil || resp.IsError() {
		return "", apiError(p.Name(), resp, err)
	}
	if out.AccessToken == "" {
		return "", &ProviderError{Provider: p.Name(), Message: "empty access token", Retryable: true}
	}

	p.token = out.AccessToken
	p.tokenExp = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return p.token, nil
}

type paypalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				Status string `json:"status"`
				Amount struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// Initiate creates a CAPTURE-intent order and returns its id plus the
// approval link the buyer is redirected to.
func (p *PayPalProvider) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return InitiateResponse{}, err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"custom_id": fmt.Sprintf("%d:%d", req.UserID, req.CourseID),
			"amount": map[string]string{
				"currency_code": strings.ToUpper(req.Currency),
				"value":         minorToDecimal(req.Amount),
			},
		}},
	}

	var out paypalOrder
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("PayPal-Request-Id", uuid.NewString()).
		SetBody(payload).
		SetResult(&out).
		Post("/v2/checkout/orders")
	if err != nil || resp.IsError() {
		return InitiateResponse{}, apiError(p.Name(), resp, err)
	}
	if out.ID == "" {
		return InitiateResponse{}, &ProviderError{Provider: p.Name(), Message: "incomplete order response", Retryable: true}
	}

	approval := ""
	for _, link := range out.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			approval = link.Href
		}
	}
	return InitiateResponse{ProviderRef: out.ID, ApprovalLink: approval}, nil
}

// Capture finalizes an approved order and maps the capture result onto the
// shared outcome shape.
func (p *PayPalProvider) Capture(ctx context.Context, providerRef string) (Outcome, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return Outcome{}, err
	}

	var out paypalOrder
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetResult(&out).
		Post("/v2/checkout/orders/" + providerRef + "/capture")
	if err != nil || resp.IsError() {
		return Outcome{}, apiError(p.Name(), resp, err)
	}

	outcome := Outcome{Status: OutcomeFailed}
	if out.Status == "COMPLETED" {
		outcome.Status = OutcomeSucceeded
	}
	if len(out.PurchaseUnits) > 0 && len(out.PurchaseUnits[0].Payments.Captures) > 0 {
		capture := out.PurchaseUnits[0].Payments.Captures[0]
		outcome.Amount = decimalToMinor(capture.Amount.Value)
		outcome.Currency = strings.ToUpper(capture.Amount.CurrencyCode)
	}
	return outcome, nil
}

// VerifyWebhook is not part of the PayPal flow here; capture finalizes.
func (p *PayPalProvider) VerifyWebhook(signature string, body []byte) (Event, error) {
	return Event{}, ErrWebhookNotSupported
}

// minorToDecimal renders minor units as a two-decimal string ("2000" -> "20.00").
func minorToDecimal(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}

// decimalToMinor parses a two-decimal amount string back into minor units.
func decimalToMinor(value string) int64 {
	whole, frac, _ := strings.Cut(value, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}
	for len(frac) < 2 {
		frac += "0"
	}
	f, err := strconv.ParseInt(frac[:2], 10, 64)
	if err != nil {
		return w * 100
	}
	return w*100 + f
}
