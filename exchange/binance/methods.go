package binance

import (
	"net/http"
	"sort"

	"github.com/pkg/errors"
)

//
// Kind distinguishes methods that need no credentials from those that do.
//
type Kind int

const (
	Public Kind = iota + 1
	Private
)

func (o Kind) String() string {
	switch o {
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return "invalid"
	}
}

//
// Method describes how a single logical API method is dispatched.
//
type Method struct {
	Name string
	Kind Kind
	Verb string

	//
	// Signed is only meaningful for private methods. Private methods that are not signed still carry
	// the API key header and a nonce, but no signature.
	//
	Signed bool
}

var (
	publicMethods = map[string]string{
		"ping":        http.MethodGet,
		"time":        http.MethodGet,
		"depth":       http.MethodGet,
		"aggTrades":   http.MethodGet,
		"klines":      http.MethodGet,
		"ticker":      http.MethodGet,
		"ticker/24hr": http.MethodGet,
	}

	privateMethods = map[string]string{
		"order":          http.MethodPost,
		"order/test":     http.MethodPost,
		"account":        http.MethodGet,
		"openOrders":     http.MethodGet,
		"allOrders":      http.MethodGet,
		"myTrades":       http.MethodGet,
		"userDataStream": http.MethodPost,
	}
)

//
// DefaultUnsignedMethods lists the private methods that only need the API key. Listen keys for the
// user data stream are tied to the key itself, so no signature is computed for them.
//
func DefaultUnsignedMethods() []string {
	return []string{"userDataStream"}
}

//
// PublicMethods returns the names of all public methods in sorted order.
//
func PublicMethods() []string {
	return sortedKeys(publicMethods)
}

//
// PrivateMethods returns the names of all private methods in sorted order.
//
func PrivateMethods() []string {
	return sortedKeys(privateMethods)
}

//
// router classifies method names. It is built once per client from that client's configuration and
// is read-only afterwards.
//
type router struct {
	unsigned map[string]bool
}

func newRouter(unsigned []string) (*router, error) {
	o := &router{
		unsigned: make(map[string]bool, len(unsigned)),
	}

	for _, name := range unsigned {
		if _, ok := privateMethods[name]; !ok {
			return nil, errors.Wrapf(ErrInvalidMethod, "%q cannot be unsigned, it is not a private method", name)
		}

		o.unsigned[name] = true
	}

	return o, nil
}

//
// route returns the dispatch description for the named method, or ErrInvalidMethod.
//
func (o *router) route(name string) (Method, error) {
	if verb, ok := publicMethods[name]; ok {
		return Method{Name: name, Kind: Public, Verb: verb}, nil
	}

	if verb, ok := privateMethods[name]; ok {
		return Method{Name: name, Kind: Private, Verb: verb, Signed: !o.unsigned[name]}, nil
	}

	return Method{}, errors.Wrapf(ErrInvalidMethod, "%q", name)
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}
