package exchange

import (
	"context"
)

//
// Client generically provides an interface to an object that can be used to interact with a
// cryptocurrency exchange's regular REST API by logical method name. Normally, this is the client
// used to do things like place orders, check balances, and retrieve historical trade data.
//
// Whenever a call fails – whether due to an unknown method, missing credentials, a transport
// failure, or an API error – the error will be non-nil and the response will be nil. Each call makes
// at most one request against the exchange.
//
type Client interface {

	//
	// Call invokes the named method without any parameters.
	//
	Call(ctx context.Context, method string) (Response, error)

	//
	// API invokes the named method with the provided parameters. The parameters are never mutated.
	//
	API(ctx context.Context, method string, params Params) (Response, error)
}
