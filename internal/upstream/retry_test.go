package upstream

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	Client
	errs  []error
	calls int
}

func (s *scriptedClient) Risk(ctx context.Context, docID string) (Payload, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return Payload{}, s.errs[i]
	}
	return Payload{Kind: KindText, Text: "ok"}, nil
}

func TestRetryOnceOnTransientErrors(t *testing.T) {
	cases := []struct {
		name      string
		first     error
		wantCalls int
		wantErr   bool
	}{
		{name: "503 retried", first: &StatusError{Endpoint: endpointRisk, Status: http.StatusServiceUnavailable}, wantCalls: 2},
		{name: "429 retried", first: &StatusError{Endpoint: endpointRisk, Status: http.StatusTooManyRequests}, wantCalls: 2},
		{name: "connection refused retried", first: errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), wantCalls: 2},
		{name: "400 not retried", first: &StatusError{Endpoint: endpointRisk, Status: http.StatusBadRequest}, wantCalls: 1, wantErr: true},
		{name: "bad response not retried", first: ErrBadResponse, wantCalls: 1, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := &scriptedClient{errs: []error{tc.first}}
			c := retryingClient{base: base, delay: time.Millisecond}
			p, err := c.Risk(context.Background(), "doc-1")
			assert.Equal(t, tc.wantCalls, base.calls)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", p.Text)
		})
	}
}

func TestRetryGivesUpAfterSecondFailure(t *testing.T) {
	transient := &StatusError{Endpoint: endpointRisk, Status: http.StatusBadGateway}
	base := &scriptedClient{errs: []error{transient, transient}}
	c := retryingClient{base: base, delay: time.Millisecond}
	_, err := c.Risk(context.Background(), "doc-1")
	assert.ErrorAs(t, err, new(*StatusError))
	assert.Equal(t, 2, base.calls)
}

func TestRetryStopsWhenContextCancelled(t *testing.T) {
	base := &scriptedClient{errs: []error{&StatusError{Status: http.StatusBadGateway}}}
	c := retryingClient{base: base, delay: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Risk(ctx, "doc-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, base.calls)
}
