package binance

import (
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lukehollenback/binanceapi/exchange"
)

//
// authenticator turns a routed method and its parameters into a wire request. Public requests are
// left unauthenticated; private requests get the API key header, a nonce, the configured
// one-time-password, and (when the method is signed) a timestamp and signature.
//
type authenticator struct {
	apiKey      string
	apiSecret   string
	otp         string
	baseURL     string
	publicPath  string
	privatePath string
	userAgent   string
	timeout     time.Duration

	nonce  NonceGenerator
	signer Signer
	now    func() time.Time
}

//
// build never mutates the provided parameters. A caller-supplied signature parameter is always
// dropped; only the authenticator computes one.
//
func (o *authenticator) build(m Method, params exchange.Params) (*Request, error) {
	switch m.Kind {
	case Public:
		return o.buildPublic(m, params)
	case Private:
		return o.buildPrivate(m, params)
	default:
		return nil, errors.Wrapf(ErrInvalidMethod, "%q", m.Name)
	}
}

func (o *authenticator) buildPublic(m Method, params exchange.Params) (*Request, error) {
	body := params.Clone()
	delete(body, SignatureParam)

	encoded, err := body.Encode()
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s", m.Name)
	}

	return &Request{
		Verb:    m.Verb,
		URL:     o.url(o.publicPath, m.Name, encoded),
		Header:  o.header(false),
		Body:    body,
		Timeout: o.timeout,
	}, nil
}

func (o *authenticator) buildPrivate(m Method, params exchange.Params) (*Request, error) {
	//
	// Make sure we hold every credential the method needs before doing any work.
	//
	if o.apiKey == "" {
		return nil, errors.Wrapf(ErrMissingCredentials, "%s requires an API key", m.Name)
	}

	if m.Signed && o.apiSecret == "" {
		return nil, errors.Wrapf(ErrMissingCredentials, "%s requires an API secret to sign", m.Name)
	}

	//
	// Inject the nonce and one-time-password.
	//
	body := params.Clone()
	delete(body, SignatureParam)

	if body[NonceParam] == nil {
		body[NonceParam] = o.nonce.Next()
	}

	if o.otp != "" {
		body[OTPParam] = o.otp
	}

	//
	// Sign the canonical encoding if the method requires it. The timestamp is set before encoding
	// so that it is covered by the signature as well.
	//
	var query string

	if m.Signed {
		if body[TimestampParam] == nil {
			body[TimestampParam] = o.now().UnixNano() / int64(time.Millisecond)
		}

		encoded, err := body.Encode()
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s", m.Name)
		}

		signature := o.signer.Sign(encoded, o.apiSecret)
		body[SignatureParam] = signature

		query = encoded + "&" + SignatureParam + "=" + signature
	} else {
		encoded, err := body.Encode()
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s", m.Name)
		}

		query = encoded
	}

	return &Request{
		Verb:    m.Verb,
		URL:     o.url(o.privatePath, m.Name, query),
		Header:  o.header(true),
		Body:    body,
		Timeout: o.timeout,
	}, nil
}

func (o *authenticator) url(prefix string, method string, query string) string {
	u := strings.TrimRight(o.baseURL, "/")
	if p := strings.Trim(prefix, "/"); p != "" {
		u += "/" + p
	}
	u += "/" + method

	if query != "" {
		u += "?" + query
	}

	return u
}

func (o *authenticator) header(withKey bool) http.Header {
	h := make(http.Header)
	h.Set(UserAgentHeader, o.userAgent)

	if withKey {
		h.Set(APIKeyHeader, o.apiKey)
	}

	return h
}
