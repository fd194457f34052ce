package binance

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lukehollenback/binanceapi/exchange"
	"github.com/lukehollenback/binanceapi/structs/evictingqueue"
)

//
// Client dispatches named API methods against the exchange. It is safe for concurrent use; its
// configuration is fixed at construction.
//
type Client struct {
	cfg       Config
	router    *router
	auth      *authenticator
	transport Transport
	limiter   *rate.Limiter
	metrics   *Metrics
	l         *zap.SugaredLogger
	history   *evictingqueue.EvictingQueue[Record]
	now       func() time.Time
}

//
// Record describes one call made through the client. It never holds credentials, signatures, or
// parameter values.
//
type Record struct {
	Method  string
	Kind    Kind
	Nonce   int64
	At      time.Time
	Took    time.Duration
	Outcome string
}

//
// Result carries the outcome of an asynchronous call.
//
type Result struct {
	Response *Response
	Err      error
}

//
// Option customizes the collaborators of a client.
//
type Option func(*options)

type options struct {
	transport  Transport
	httpClient *http.Client
	logger     *zap.SugaredLogger
	signer     Signer
	nonce      NonceGenerator
	metrics    *Metrics
	now        func() time.Time
}

func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

//
// WithHTTPClient makes the default HTTP transport use the provided client. It is ignored when a
// transport is supplied with WithTransport.
//
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = l }
}

func WithSigner(s Signer) Option {
	return func(o *options) { o.signer = s }
}

func WithNonceGenerator(n NonceGenerator) Option {
	return func(o *options) { o.nonce = n }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

//
// WithClock replaces the wall clock used for timestamps, history, and the default nonce generator.
//
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

//
// NewClient creates a client from the provided configuration. Empty fields of the configuration fall
// back to the values of DefaultConfig, except HistorySize, where zero turns the history off.
//
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = withDefaults(cfg.clone())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opt := &options{}
	for _, fn := range opts {
		fn(opt)
	}

	if opt.now == nil {
		opt.now = time.Now
	}
	if opt.logger == nil {
		opt.logger = zap.S()
	}
	if opt.signer == nil {
		opt.signer = DigestSigner{}
	}
	if opt.nonce == nil {
		opt.nonce = NewMonotonicNonce(opt.now)
	}
	if opt.transport == nil {
		opt.transport = NewHTTPTransport(opt.httpClient)
	}

	r, err := newRouter(cfg.UnsignedMethods)
	if err != nil {
		return nil, err
	}

	o := &Client{
		cfg:    cfg,
		router: r,
		auth: &authenticator{
			apiKey:      cfg.APIKey,
			apiSecret:   cfg.APISecret,
			otp:         cfg.OTP,
			baseURL:     cfg.URL,
			publicPath:  cfg.PublicPath,
			privatePath: cfg.PrivatePath,
			userAgent:   cfg.UserAgent,
			timeout:     cfg.Timeout,
			nonce:       opt.nonce,
			signer:      opt.signer,
			now:         opt.now,
		},
		transport: opt.transport,
		metrics:   opt.metrics,
		l:         opt.logger,
		history:   evictingqueue.New[Record](cfg.HistorySize),
		now:       opt.now,
	}

	//
	// Pace requests on the client side if asked to. A burst of a tenth of the per-minute budget is
	// allowed.
	//
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.RequestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}

		o.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), burst)
	}

	return o, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()

	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.PublicPath == "" {
		cfg.PublicPath = def.PublicPath
	}
	if cfg.PrivatePath == "" {
		cfg.PrivatePath = def.PrivatePath
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.UnsignedMethods == nil {
		cfg.UnsignedMethods = def.UnsignedMethods
	}

	return cfg
}

//
// Config returns a copy of the client's configuration with the secret and one-time-password
// redacted.
//
func (o *Client) Config() Config {
	c := o.cfg.clone()
	if c.APISecret != "" {
		c.APISecret = "<redacted>"
	}
	if c.OTP != "" {
		c.OTP = "<redacted>"
	}

	return c
}

//
// Call invokes the named method without parameters.
//
func (o *Client) Call(ctx context.Context, method string) (*Response, error) {
	return o.API(ctx, method, nil)
}

//
// API invokes the named method with the provided parameters and returns the decoded success
// payload. Failures are one of ErrInvalidMethod, ErrInvalidParam, ErrMissingCredentials (all
// detected before any I/O), *TransportError, or *RemoteAPIError. Exactly one request is attempted.
//
func (o *Client) API(ctx context.Context, method string, params exchange.Params) (resp *Response, err error) {
	start := o.now()

	var (
		m          Method
		req        *Request
		dispatched bool
	)

	defer func() {
		o.finish(method, m.Kind, req, start, dispatched, err)
	}()

	//
	// Route the method and build the wire request.
	//
	if m, err = o.router.route(method); err != nil {
		return nil, err
	}

	if req, err = o.auth.build(m, params); err != nil {
		return nil, err
	}

	path := stripQuery(req.URL)

	//
	// Wait for the pacer (if there is one) and hand the request to the transport.
	//
	if o.limiter != nil {
		if waitErr := o.limiter.Wait(ctx); waitErr != nil {
			return nil, &TransportError{Method: method, Path: path, Err: waitErr}
		}
	}

	o.l.Debugw("dispatching request", "method", method, "kind", m.Kind, "verb", req.Verb, "path", path)

	dispatched = true

	raw, err := o.transport.Do(ctx, req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	if raw == nil {
		raw = &RawResponse{}
	}

	//
	// Decode the payload and collapse any error it reports.
	//
	resp, err = decodeResponse(method, raw)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	if err = normalize(method, raw.StatusCode, resp.value); err != nil {
		return nil, err
	}

	return resp, nil
}

//
// Go invokes the named method asynchronously. The returned channel receives exactly one result and
// is then closed. The parameters are copied before Go returns.
//
func (o *Client) Go(ctx context.Context, method string, params exchange.Params) <-chan Result {
	params = params.Clone()
	ch := make(chan Result, 1)

	go func() {
		defer close(ch)

		resp, err := o.API(ctx, method, params)
		ch <- Result{Response: resp, Err: err}
	}()

	return ch
}

//
// APICallback invokes the named method asynchronously and calls fn exactly once with the outcome.
// Exactly one of the arguments passed to fn is non-nil.
//
func (o *Client) APICallback(ctx context.Context, method string, params exchange.Params, fn func(*Response, error)) {
	ch := o.Go(ctx, method, params)

	go func() {
		r := <-ch
		fn(r.Response, r.Err)
	}()
}

//
// Recent returns the most recent calls made through the client, oldest first.
//
func (o *Client) Recent() []Record {
	return o.history.Snapshot()
}

//
// Exchange exposes the client through the generic exchange.Client interface.
//
func (o *Client) Exchange() exchange.Client {
	return genericClient{o}
}

func (o *Client) finish(method string, kind Kind, req *Request, start time.Time, dispatched bool, err error) {
	took := o.now().Sub(start)

	rec := Record{
		Method:  method,
		Kind:    kind,
		At:      start,
		Took:    took,
		Outcome: Outcome(err),
	}

	if req != nil && kind == Private {
		if n, ok := req.Body[NonceParam].(int64); ok {
			rec.Nonce = n
		}
	}

	o.history.Add(rec)
	o.metrics.observe(method, kind, err, took, dispatched)

	if err != nil {
		o.l.Warnw("request failed", "method", method, "kind", kind, "outcome", rec.Outcome, "took", took, "err", err)
	} else {
		o.l.Debugw("request completed", "method", method, "kind", kind, "took", took)
	}
}

func stripQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}

	return u
}

//
// genericClient adapts *Client to exchange.Client.
//
type genericClient struct {
	c *Client
}

func (o genericClient) Call(ctx context.Context, method string) (exchange.Response, error) {
	return o.API(ctx, method, nil)
}

func (o genericClient) API(ctx context.Context, method string, params exchange.Params) (exchange.Response, error) {
	resp, err := o.c.API(ctx, method, params)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

var _ exchange.Client = genericClient{}
var _ exchange.Response = (*Response)(nil)
var _ exchange.APIError = (*RemoteAPIError)(nil)
var _ exchange.Candle = (*Candle)(nil)
