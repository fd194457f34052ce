package binance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

//
// spyTransport records every request handed to it and answers with a canned response.
//
type spyTransport struct {
	mu       sync.Mutex
	requests []*Request
	status   int
	body     string
	err      error
}

func (o *spyTransport) Do(_ context.Context, req *Request) (*RawResponse, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.requests = append(o.requests, req)

	if o.err != nil {
		return nil, o.err
	}

	status := o.status
	if status == 0 {
		status = 200
	}

	return &RawResponse{StatusCode: status, Body: []byte(o.body)}, nil
}

func (o *spyTransport) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.requests)
}

func (o *spyTransport) last() *Request {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.requests) == 0 {
		return nil
	}

	return o.requests[len(o.requests)-1]
}

//
// fakeClock advances by step every time it is read.
//
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{t: time.Unix(1600000000, 0), step: step}
}

func (o *fakeClock) Now() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.t
	o.t = o.t.Add(o.step)

	return now
}

func newTestClient(t *testing.T, cfg Config, spy *spyTransport, opts ...Option) *Client {
	t.Helper()

	opts = append([]Option{WithTransport(spy), WithLogger(zap.NewNop().Sugar())}, opts...)

	c, err := NewClient(cfg, opts...)
	require.NoError(t, err)

	return c
}

func credentials() Config {
	cfg := DefaultConfig()
	cfg.APIKey = "my-api-key"
	cfg.APISecret = "s3cr3t"

	return cfg
}
