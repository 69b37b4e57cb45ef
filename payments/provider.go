package payments

import (
	"context"
)

// Outcome statuses shared by both completion paths (webhook and capture).
const (
	OutcomeSucceeded = "SUCCEEDED"
	OutcomeFailed    = "FAILED"
)

type InitiateRequest struct {
	Amount   int64 // minor currency units, resolved server-side
	Currency string
	UserID   uint
	CourseID uint
}

// InitiateResponse carries the provider-side pending reference plus whatever
// the client needs to continue: a client secret (push providers) or an
// approval link to redirect to (pull providers). Exactly one is set.
type InitiateResponse struct {
	ProviderRef  string
	ClientSecret string
	ApprovalLink string
}

// Outcome is the provider-agnostic completion result. The orchestrator only
// ever consumes this shape, regardless of whether it arrived via a signed
// webhook or an explicit capture call.
type Outcome struct {
	Status   string // SUCCEEDED | FAILED
	Amount   int64
	Currency string
}

// Event is a verified, parsed webhook notification. Outcome.Status is empty
// for event types that carry no completion (the handler acks and ignores).
type Event struct {
	EventID     string
	Type        string
	ProviderRef string
	Outcome     Outcome
}

// Provider is the uniform adapter contract. The two shipped providers
// realize completion asymmetrically: stripe pushes signed webhooks and
// rejects Capture, paypal requires a client-driven Capture and delivers no
// webhook. Callers pick the path per call; nothing above this boundary
// branches on the provider name.
type Provider interface {
	Name() string
	Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error)
	Capture(ctx context.Context, providerRef string) (Outcome, error)
	VerifyWebhook(signature string, body []byte) (Event, error)
}
