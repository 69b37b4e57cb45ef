package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakePayPal(t *testing.T, captureStatus string) (*httptest.Server, *int32) {
	var tokenCalls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/v1/oauth2/token":
			atomic.AddInt32(&tokenCalls, 1)
			w.Write([]byte(`{"access_token":"test-token","expires_in":3600}`))
		case r.URL.Path == "/v2/checkout/orders":
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.Header.Get("Paypal-Request-Id"))
			w.Write([]byte(`{"id":"ORDER1","status":"CREATED","links":[{"href":"https://paypal.test/approve/ORDER1","rel":"approve"}]}`))
		case strings.HasSuffix(r.URL.Path, "/capture"):
			w.Write([]byte(`{"id":"ORDER1","status":"` + captureStatus + `","purchase_units":[{"payments":{"captures":[{"status":"` + captureStatus + `","amount":{"currency_code":"USD","value":"20.00"}}]}}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return server, &tokenCalls
}

func TestPayPalInitiateAndCapture(t *testing.T) {
	server, tokenCalls := newFakePayPal(t, "COMPLETED")
	defer server.Close()

	p := NewPayPalProvider(server.URL, "client", "secret", time.Second)

	resp, err := p.Initiate(context.Background(), InitiateRequest{Amount: 2000, Currency: "USD", UserID: 7, CourseID: 3})
	require.NoError(t, err)
	assert.Equal(t, "ORDER1", resp.ProviderRef)
	assert.Equal(t, "https://paypal.test/approve/ORDER1", resp.ApprovalLink)
	assert.Empty(t, resp.ClientSecret)

	outcome, err := p.Capture(context.Background(), "ORDER1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, outcome.Status)
	assert.Equal(t, int64(2000), outcome.Amount)
	assert.Equal(t, "USD", outcome.Currency)

	// token fetched once, then reused from the cache
	assert.Equal(t, int32(1), atomic.LoadInt32(tokenCalls))
}

func TestPayPalCaptureDeclined(t *testing.T) {
	server, _ := newFakePayPal(t, "DECLINED")
	defer server.Close()

	p := NewPayPalProvider(server.URL, "client", "secret", time.Second)

	outcome, err := p.Capture(context.Background(), "ORDER1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, outcome.Status)
}

func TestPayPalUnavailableIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewPayPalProvider(server.URL, "client", "secret", time.Second)

	_, err := p.Initiate(context.Background(), InitiateRequest{Amount: 2000, Currency: "USD"})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestPayPalWebhookNotSupported(t *testing.T) {
	p := NewPayPalProvider("https://api-m.sandbox.paypal.com", "client", "secret", time.Second)

	_, err := p.VerifyWebhook("sig", []byte("{}"))
	assert.True(t, errors.Is(err, ErrWebhookNotSupported))
}

func TestAmountConversions(t *testing.T) {
	assert.Equal(t, "20.00", minorToDecimal(2000))
	assert.Equal(t, "0.05", minorToDecimal(5))
	assert.Equal(t, "1234.56", minorToDecimal(123456))

	assert.Equal(t, int64(2000), decimalToMinor("20.00"))
	assert.Equal(t, int64(5), decimalToMinor("0.05"))
	assert.Equal(t, int64(2000), decimalToMinor("20"))
	assert.Equal(t, int64(2050), decimalToMinor("20.5"))
}
