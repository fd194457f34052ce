package binance

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/lukehollenback/binanceapi/exchange"
)

var (
	//
	// ErrInvalidMethod is returned, before any I/O, when a call names neither a public nor a private
	// method.
	//
	ErrInvalidMethod = errors.New("invalid method")

	//
	// ErrMissingCredentials is returned, before any I/O, when a private call is attempted without an
	// API key, or a signed call without a secret.
	//
	ErrMissingCredentials = errors.New("missing credentials")

	ErrInvalidParam = exchange.ErrInvalidParam
)

//
// TransportError wraps any failure of the transport to produce a response body: connection
// failures, timeouts, unacceptable status codes (an *exchange.HTTPError), and undecodable
// payloads. The core never retries these.
//
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (o *TransportError) Error() string {
	return fmt.Sprintf("transport failure calling %s (%s): %s", o.Method, o.Path, o.Err)
}

func (o *TransportError) Unwrap() error {
	return o.Err
}

//
// StatusCode returns the HTTP status code behind the failure, or zero if the failure happened
// before a status was received.
//
func (o *TransportError) StatusCode() int {
	var httpErr *exchange.HTTPError
	if errors.As(o.Err, &httpErr) {
		return httpErr.StatusCode()
	}

	return 0
}

//
// Timeout reports whether the failure was caused by the request deadline expiring.
//
func (o *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(o.Err, &t) {
		return t.Timeout()
	}

	return false
}
