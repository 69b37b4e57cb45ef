package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// signatureTolerance bounds the age of a signed webhook timestamp so a
// captured payload cannot be replayed much later.
const signatureTolerance = 5 * time.Minute

// StripeProvider is the push-style provider: completion arrives via a signed
// webhook, never via client capture.
type StripeProvider struct {
	client        *resty.Client
	webhookSecret string
}

func NewStripeProvider(apiURL, secretKey, webhookSecret string, timeout time.Duration) *StripeProvider {
	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(timeout).
		SetAuthToken(secretKey)
	return &StripeProvider{client: client, webhookSecret: webhookSecret}
}

func (s *StripeProvider) Name() string { return "stripe" }

type stripeIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// Initiate creates a PaymentIntent on the Stripe side and returns its id
// plus the client secret the frontend uses to confirm the payment.
func (s *StripeProvider) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	var out stripeIntent

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetFormData(map[string]string{
			"amount":                             strconv.FormatInt(req.Amount, 10),
			"currency":                           strings.ToLower(req.Currency),
			"automatic_payment_methods[enabled]": "true",
			"metadata[user_id]":                  strconv.FormatUint(uint64(req.UserID), 10),
			"metadata[course_id]":                strconv.FormatUint(uint64(req.CourseID), 10),
		}).
		SetResult(&out).
		Post("/v1/payment_intents")
	if err != nil || resp.IsError() {
		return InitiateResponse{}, apiError(s.Name(), resp, err)
	}
	if out.ID == "" || out.ClientSecret == "" {
		return InitiateResponse{}, &ProviderError{Provider: s.Name(), Message: "incomplete payment_intent response", Retryable: true}
	}

	return InitiateResponse{ProviderRef: out.ID, ClientSecret: out.ClientSecret}, nil
}

// Capture is not part of the Stripe flow; the webhook finalizes the intent.
func (s *StripeProvider) Capture(ctx context.Context, providerRef string) (Outcome, error) {
	return Outcome{}, ErrCaptureNotSupported
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		} `json:"object"`
	} `json:"data"`
}

// VerifyWebhook authenticates a Stripe-Signature header against the raw
// payload and parses the event. The signature check runs before any parsing
// so a tampered body never reaches business code.
func (s *StripeProvider) VerifyWebhook(signature string, body []byte) (Event, error) {
	timestamp, candidates := parseSignatureHeader(signature)
	if timestamp == 0 || len(candidates) == 0 {
		return Event{}, ErrSignatureInvalid
	}

	age := time.Since(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return Event{}, ErrSignatureInvalid
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	expected := mac.Sum(nil)

	matched := false
	for _, candidate := range candidates {
		sig, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		// constant-time comparison
		if hmac.Equal(sig, expected) {
			matched = true
		}
	}
	if !matched {
		return Event{}, ErrSignatureInvalid
	}

	var ev stripeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if ev.ID == "" || ev.Data.Object.ID == "" {
		return Event{}, fmt.Errorf("%w: missing event or object id", ErrMalformedPayload)
	}

	out := Event{
		EventID:     ev.ID,
		Type:        ev.Type,
		ProviderRef: ev.Data.Object.ID,
	}
	switch ev.Type {
	case "payment_intent.succeeded":
		out.Outcome = Outcome{
			Status:   OutcomeSucceeded,
			Amount:   ev.Data.Object.Amount,
			Currency: strings.ToUpper(ev.Data.Object.Currency),
		}
	case "payment_intent.payment_failed", "payment_intent.canceled":
		out.Outcome = Outcome{
			Status:   OutcomeFailed,
			Amount:   ev.Data.Object.Amount,
			Currency: strings.ToUpper(ev.Data.Object.Currency),
		}
	}
	return out, nil
}

// parseSignatureHeader splits "t=<unix>,v1=<hex>[,v1=<hex>...]" into the
// timestamp and the v1 signature candidates.
func parseSignatureHeader(header string) (int64, []string) {
	var timestamp int64
	var candidates []string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err == nil {
				timestamp = ts
			}
		case "v1":
			candidates = append(candidates, value)
		}
	}
	return timestamp, candidates
}

// SignPayload builds a valid Stripe-Signature header for a payload. Used by
// the mock webhook tool and tests.
func SignPayload(secret string, at time.Time, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}
