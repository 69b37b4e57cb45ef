package payments

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrUnsupportedProvider is returned by the registry for unknown names.
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
	// ErrSignatureInvalid means the webhook signature did not match.
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	// ErrMalformedPayload means the webhook body could not be parsed.
	ErrMalformedPayload = errors.New("webhook payload malformed")
	// ErrCaptureNotSupported: the provider completes via webhook only.
	ErrCaptureNotSupported = errors.New("provider does not support client-driven capture")
	// ErrWebhookNotSupported: the provider completes via capture only.
	ErrWebhookNotSupported = errors.New("provider does not deliver webhooks")
)

// ProviderError wraps a failed provider API call. Network failures and 5xx
// responses are retryable; 4xx rejections are terminal.
type ProviderError struct {
	Provider  string
	Status    int
	Message   string
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s unavailable: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Status, e.Message)
}

// IsRetryable reports whether the caller may retry the operation.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

// apiError classifies a resty call result into a ProviderError.
func apiError(provider string, resp *resty.Response, err error) error {
	if err != nil {
		return &ProviderError{Provider: provider, Message: err.Error(), Retryable: true}
	}
	body := resp.String()
	if len(body) > 255 {
		body = body[:255]
	}
	return &ProviderError{
		Provider:  provider,
		Status:    resp.StatusCode(),
		Message:   body,
		Retryable: resp.StatusCode() >= 500,
	}
}
