package binance

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukehollenback/binanceapi/exchange"
)

var hex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestPingBuildsUnsignedRequest(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	c := newTestClient(t, credentials(), spy)

	resp, err := c.Call(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "ping", resp.Method())

	req := spy.last()
	require.NotNil(t, req)

	u, err := url.Parse(req.URL)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/ping", u.Path)
	assert.Empty(t, u.RawQuery)
	assert.Equal(t, "GET", req.Verb)
	assert.Empty(t, req.Body)
	assert.Empty(t, req.Header.Get(APIKeyHeader))
	assert.NotEmpty(t, req.Header.Get(UserAgentHeader))
}

func TestPublicMethodsNeverCarryCredentials(t *testing.T) {
	for _, method := range PublicMethods() {
		t.Run(method, func(t *testing.T) {
			spy := &spyTransport{body: `{}`}
			c := newTestClient(t, credentials(), spy)

			_, err := c.API(context.Background(), method, exchange.Params{"symbol": "BTCUSDT"})
			require.NoError(t, err)

			req := spy.last()
			assert.Empty(t, req.Header.Get(APIKeyHeader))
			assert.False(t, req.Body.Has(SignatureParam))
			assert.False(t, req.Body.Has(NonceParam))
			assert.NotContains(t, req.URL, SignatureParam)
			assert.True(t, strings.Contains(req.URL, "/api/v1/"+method))
		})
	}
}

func TestOrderIsSigned(t *testing.T) {
	spy := &spyTransport{body: `{"orderId": 1}`}
	c := newTestClient(t, credentials(), spy)

	params := exchange.Params{"symbol": "BTCUSDT", "side": "BUY"}

	_, err := c.API(context.Background(), "order", params)
	require.NoError(t, err)

	req := spy.last()
	assert.Equal(t, "POST", req.Verb)
	assert.True(t, req.Body.Has(NonceParam))
	assert.True(t, req.Body.Has(TimestampParam))
	require.True(t, req.Body.Has(SignatureParam))
	assert.Regexp(t, hex64, req.Body[SignatureParam])
	assert.Equal(t, "my-api-key", req.Header.Get(APIKeyHeader))

	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "/api/v3/order", u.Path)
	assert.Equal(t, req.Body[SignatureParam], u.Query().Get(SignatureParam))

	// The caller's parameters are left alone.
	assert.Len(t, params, 2)
}

func TestOrderWithoutSecretFailsBeforeIO(t *testing.T) {
	spy := &spyTransport{body: `{}`}

	cfg := credentials()
	cfg.APISecret = ""
	c := newTestClient(t, cfg, spy)

	_, err := c.API(context.Background(), "order", exchange.Params{"symbol": "BTCUSDT", "side": "BUY"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCredentials))
	assert.Equal(t, 0, spy.calls())
}

func TestPrivateWithoutKeyFailsBeforeIO(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	c := newTestClient(t, DefaultConfig(), spy)

	for _, method := range PrivateMethods() {
		_, err := c.Call(context.Background(), method)
		assert.True(t, errors.Is(err, ErrMissingCredentials), method)
	}
	assert.Equal(t, 0, spy.calls())
}

func TestInvalidMethodMakesNoRequest(t *testing.T) {
	for _, method := range []string{"", "withdraw", "PING", "order/", "api/v1/ping", "ticker/price"} {
		t.Run(method, func(t *testing.T) {
			spy := &spyTransport{body: `{}`}
			c := newTestClient(t, credentials(), spy)

			resp, err := c.Call(context.Background(), method)
			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, ErrInvalidMethod))
			assert.Equal(t, 0, spy.calls())
		})
	}
}

func TestSignaturesDifferAcrossCalls(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	clock := newFakeClock(time.Millisecond)
	c := newTestClient(t, credentials(), spy, WithClock(clock.Now))

	seen := map[string]bool{}

	for _, method := range PrivateMethods() {
		m, err := c.router.route(method)
		require.NoError(t, err)
		if !m.Signed {
			continue
		}

		for i := 0; i < 2; i++ {
			_, err := c.API(context.Background(), method, exchange.Params{"symbol": "BTCUSDT"})
			require.NoError(t, err)

			req := spy.last()
			sig, _ := req.Body[SignatureParam].(string)
			require.NotEmpty(t, sig)
			assert.False(t, seen[sig], "signature reused for %s", method)
			seen[sig] = true

			assert.NotContains(t, req.URL, "s3cr3t")
			for _, v := range req.Header {
				assert.NotContains(t, strings.Join(v, ","), "s3cr3t")
			}
			encoded, err := req.Body.Encode()
			require.NoError(t, err)
			assert.NotContains(t, encoded, "s3cr3t")
		}
	}
}

func TestUserDataStreamIsUnsignedByDefault(t *testing.T) {
	spy := &spyTransport{body: `{"listenKey": "abc"}`}

	cfg := credentials()
	cfg.APISecret = ""
	c := newTestClient(t, cfg, spy)

	resp, err := c.Call(context.Background(), "userDataStream")
	require.NoError(t, err)

	var out struct {
		ListenKey string `json:"listenKey"`
	}
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "abc", out.ListenKey)

	req := spy.last()
	assert.Equal(t, "my-api-key", req.Header.Get(APIKeyHeader))
	assert.True(t, req.Body.Has(NonceParam))
	assert.False(t, req.Body.Has(SignatureParam))
	assert.False(t, req.Body.Has(TimestampParam))
}

func TestUnsignedMethodsOverride(t *testing.T) {
	spy := &spyTransport{body: `{}`}

	cfg := credentials()
	cfg.UnsignedMethods = []string{"account"}
	c := newTestClient(t, cfg, spy)

	_, err := c.Call(context.Background(), "account")
	require.NoError(t, err)
	assert.False(t, spy.last().Body.Has(SignatureParam))

	_, err = c.Call(context.Background(), "userDataStream")
	require.NoError(t, err)
	assert.True(t, spy.last().Body.Has(SignatureParam))
}

func TestOTPIsAttached(t *testing.T) {
	spy := &spyTransport{body: `{}`}

	cfg := credentials()
	cfg.OTP = "123456"
	c := newTestClient(t, cfg, spy)

	_, err := c.Call(context.Background(), "account")
	require.NoError(t, err)
	assert.Equal(t, "123456", spy.last().Body[OTPParam])

	_, err = c.Call(context.Background(), "time")
	require.NoError(t, err)
	assert.False(t, spy.last().Body.Has(OTPParam))
}

func TestCallerNonceIsKept(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	c := newTestClient(t, credentials(), spy)

	_, err := c.API(context.Background(), "account", exchange.Params{NonceParam: int64(42)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), spy.last().Body[NonceParam])
}

func TestRemoteErrorsAreNormalized(t *testing.T) {
	spy := &spyTransport{body: `{"error": ["E-1013", "Einvalid quantity"]}`}
	c := newTestClient(t, credentials(), spy)

	_, err := c.API(context.Background(), "order", exchange.Params{"symbol": "BTCUSDT", "side": "BUY"})
	require.Error(t, err)

	var apiErr *RemoteAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "1013, invalid quantity", apiErr.Message())
	assert.Equal(t, -1013, apiErr.Code())
	assert.Equal(t, "order", apiErr.Method())
}

func TestTransportErrorsAreWrapped(t *testing.T) {
	cause := errors.New("connection refused")
	spy := &spyTransport{err: cause}
	c := newTestClient(t, credentials(), spy)

	_, err := c.Call(context.Background(), "time")
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "time", transportErr.Method)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, 1, spy.calls())
}

func TestUndecodableBodyIsATransportError(t *testing.T) {
	spy := &spyTransport{body: `<html>`}
	c := newTestClient(t, credentials(), spy)

	_, err := c.Call(context.Background(), "time")

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestInvalidParamFailsBeforeIO(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	c := newTestClient(t, credentials(), spy)

	_, err := c.API(context.Background(), "depth", exchange.Params{"symbol": []string{"a", "b"}})
	assert.True(t, errors.Is(err, ErrInvalidParam))
	assert.Equal(t, 0, spy.calls())
}

func TestGoDeliversExactlyOneResult(t *testing.T) {
	spy := &spyTransport{body: `{"serverTime": 1}`}
	c := newTestClient(t, credentials(), spy)

	ch := c.Go(context.Background(), "time", nil)

	r, ok := <-ch
	require.True(t, ok)
	require.NoError(t, r.Err)
	assert.NotNil(t, r.Response)

	_, ok = <-ch
	assert.False(t, ok)
}

func TestGoReportsInvalidMethod(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	c := newTestClient(t, credentials(), spy)

	r := <-c.Go(context.Background(), "nope", nil)
	assert.Nil(t, r.Response)
	assert.True(t, errors.Is(r.Err, ErrInvalidMethod))
}

func TestCallbackIsInvokedOnce(t *testing.T) {
	spy := &spyTransport{body: `{"error": ["warn-only"]}`}
	c := newTestClient(t, credentials(), spy)

	var (
		mu    sync.Mutex
		calls int
		got   error
	)
	done := make(chan struct{})

	c.APICallback(context.Background(), "account", nil, func(resp *Response, err error) {
		mu.Lock()
		defer mu.Unlock()

		calls++
		got = err
		assert.Nil(t, resp)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was never invoked")
	}

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, 1, calls)

	var apiErr *RemoteAPIError
	require.True(t, errors.As(got, &apiErr))
	assert.Equal(t, UnknownErrorMessage, apiErr.Message())
}

func TestConcurrentCallsGetDistinctNonces(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	frozen := time.Unix(1600000000, 0)
	c := newTestClient(t, credentials(), spy, WithClock(func() time.Time { return frozen }))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Call(context.Background(), "account")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, rec := range c.Recent() {
		assert.False(t, seen[rec.Nonce])
		seen[rec.Nonce] = true
	}
	assert.Len(t, seen, 32)
}

func TestRecentRecordsCalls(t *testing.T) {
	spy := &spyTransport{body: `{}`}

	cfg := credentials()
	cfg.HistorySize = 2
	c := newTestClient(t, cfg, spy)

	_, _ = c.Call(context.Background(), "ping")
	_, _ = c.Call(context.Background(), "nope")
	_, _ = c.Call(context.Background(), "account")

	recent := c.Recent()
	require.Len(t, recent, 2)

	assert.Equal(t, "nope", recent[0].Method)
	assert.Equal(t, OutcomeInvalidMethod, recent[0].Outcome)

	assert.Equal(t, "account", recent[1].Method)
	assert.Equal(t, Private, recent[1].Kind)
	assert.Equal(t, OutcomeOK, recent[1].Outcome)
	assert.NotZero(t, recent[1].Nonce)
}

func TestMetricsAreRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	spy := &spyTransport{body: `{}`}
	c := newTestClient(t, credentials(), spy, WithMetrics(m))

	_, _ = c.Call(context.Background(), "ping")
	_, _ = c.Call(context.Background(), "ping")
	_, _ = c.Call(context.Background(), "nope")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calls.WithLabelValues("ping", "public", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("nope", "invalid", OutcomeInvalidMethod)))

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	spy := &spyTransport{body: `{}`}

	cfg := credentials()
	cfg.RequestsPerMinute = 1
	c := newTestClient(t, cfg, spy)

	_, err := c.Call(context.Background(), "ping")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = c.Call(ctx, "ping")

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 1, spy.calls())
}

func TestConfigIsCopiedAndRedacted(t *testing.T) {
	cfg := credentials()
	cfg.UnsignedMethods = []string{"userDataStream"}

	c := newTestClient(t, cfg, &spyTransport{})
	cfg.UnsignedMethods[0] = "account"

	got := c.Config()
	assert.Equal(t, []string{"userDataStream"}, got.UnsignedMethods)
	assert.Equal(t, "<redacted>", got.APISecret)
	assert.Equal(t, "my-api-key", got.APIKey)
}

func TestExchangeAdapter(t *testing.T) {
	spy := &spyTransport{body: `{"serverTime": 1}`}
	c := newTestClient(t, credentials(), spy)

	var generic exchange.Client = c.Exchange()

	resp, err := generic.Call(context.Background(), "time")
	require.NoError(t, err)
	assert.Equal(t, "time", resp.Method())

	resp, err = generic.Call(context.Background(), "nope")
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestEmptyUnsignedMethodsSignsEverything(t *testing.T) {
	spy := &spyTransport{body: `{}`}

	cfg := credentials()
	cfg.UnsignedMethods = []string{}
	c := newTestClient(t, cfg, spy)

	_, err := c.Call(context.Background(), "userDataStream")
	require.NoError(t, err)
	assert.True(t, spy.last().Body.Has(SignatureParam))
	assert.Empty(t, c.Config().UnsignedMethods)
	assert.NotNil(t, c.Config().UnsignedMethods)

	cfg.UnsignedMethods = nil
	c = newTestClient(t, cfg, spy)

	_, err = c.Call(context.Background(), "userDataStream")
	require.NoError(t, err)
	assert.False(t, spy.last().Body.Has(SignatureParam))
}

func TestCallerSignatureIsDroppedOnSignedCalls(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	c := newTestClient(t, credentials(), spy)

	params := exchange.Params{"symbol": "BTCUSDT", SignatureParam: "forged"}

	_, err := c.API(context.Background(), "order", params)
	require.NoError(t, err)

	req := spy.last()
	u, err := url.Parse(req.URL)
	require.NoError(t, err)

	sigs := u.Query()[SignatureParam]
	require.Len(t, sigs, 1)
	assert.Regexp(t, hex64, sigs[0])
	assert.Equal(t, sigs[0], req.Body[SignatureParam])
	assert.Equal(t, "forged", params[SignatureParam])
}

func TestCallerSignatureIsDroppedOnUnsignedCalls(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	c := newTestClient(t, credentials(), spy)

	_, err := c.API(context.Background(), "ping", exchange.Params{SignatureParam: "x"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.binance.com/api/v1/ping", spy.last().URL)
	assert.False(t, spy.last().Body.Has(SignatureParam))

	_, err = c.API(context.Background(), "userDataStream", exchange.Params{SignatureParam: "x"})
	require.NoError(t, err)
	assert.NotContains(t, spy.last().URL, SignatureParam)
	assert.False(t, spy.last().Body.Has(SignatureParam))
}

func TestZeroHistorySizeDisablesHistory(t *testing.T) {
	spy := &spyTransport{body: `{}`}

	cfg := credentials()
	cfg.HistorySize = 0
	c := newTestClient(t, cfg, spy)

	_, err := c.Call(context.Background(), "ping")
	require.NoError(t, err)
	assert.Empty(t, c.Recent())
	assert.Equal(t, 1, spy.calls())
}
