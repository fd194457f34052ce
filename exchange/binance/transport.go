package binance

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lukehollenback/binanceapi/exchange"
)

//
// Request is a fully-formed wire request, ready for a Transport to send.
//
type Request struct {
	Verb    string
	URL     string
	Header  http.Header
	Body    exchange.Params
	Timeout time.Duration
}

//
// RawResponse is what came back over the wire.
//
type RawResponse struct {
	StatusCode int
	Body       []byte
}

//
// Transport performs the actual network call for a request. Implementations decide which status
// codes count as failures; anything they return without an error is handed to the response
// normalizer, which only looks at the payload.
//
type Transport interface {
	Do(ctx context.Context, req *Request) (*RawResponse, error)
}

//
// HTTPTransport is the default Transport. It sends the body form-encoded and bounds each request by
// the request's timeout.
//
// Status policy: 2xx responses and 4xx responses that carry a payload are returned to the caller,
// because the exchange reports request-level failures (bad parameters, bad signatures, rate limits)
// as 4xx with an error payload. 5xx responses and empty 4xx responses fail with an
// *exchange.HTTPError.
//
type HTTPTransport struct {
	httpClient *http.Client
}

func NewHTTPTransport(httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &HTTPTransport{
		httpClient: httpClient,
	}
}

func (o *HTTPTransport) Do(ctx context.Context, req *Request) (*RawResponse, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	//
	// Build the request.
	//
	encoded, err := req.Body.Encode()
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if encoded != "" {
		body = strings.NewReader(encoded)
	}

	httpReq, err := http.NewRequest(req.Verb, req.URL, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	httpReq = httpReq.WithContext(ctx)

	for k, vv := range req.Header {
		for _, v := range vv {
			httpReq.Header.Add(k, v)
		}
	}

	if encoded != "" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	//
	// Make the endpoint request and read the response.
	//
	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to do request")
	}

	respBody, err := ioutil.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read body")
	}

	//
	// Make sure the status code is one the normalizer can make sense of.
	//
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && len(respBody) > 0:
	default:
		return nil, exchange.NewHTTPError(resp.StatusCode, respBody)
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}
