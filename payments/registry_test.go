package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	return InitiateResponse{ProviderRef: "ref_" + f.name}, nil
}

func (f *fakeProvider) Capture(ctx context.Context, providerRef string) (Outcome, error) {
	return Outcome{}, ErrCaptureNotSupported
}

func (f *fakeProvider) VerifyWebhook(signature string, body []byte) (Event, error) {
	return Event{}, ErrWebhookNotSupported
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{name: "Stripe"})

	p, err := r.Resolve("stripe")
	require.NoError(t, err)
	assert.Equal(t, "Stripe", p.Name())

	// case-insensitive both ways
	p, err = r.Resolve("STRIPE")
	require.NoError(t, err)
	assert.Equal(t, "Stripe", p.Name())
}

func TestRegistryUnknownProviderFailsClosed(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{name: "paypal"})

	_, err := r.Resolve("venmo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedProvider))
}

func TestRegistryConcurrentResolve(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{name: "stripe"})
	r.Register(&fakeProvider{name: "paypal"})

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				if _, err := r.Resolve("stripe"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
