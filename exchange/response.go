package exchange

//
// Response generically provides an interface to an object that represents a successful response
// from a call to an exchange's API endpoint.
//
type Response interface {

	//
	// Method returns the logical method name the response answers.
	//
	Method() string

	//
	// Body provides the raw payload returned by the endpoint.
	//
	Body() []byte

	//
	// Value provides the payload decoded into generic JSON values (maps, slices, json.Number,
	// strings, booleans, and nils).
	//
	Value() interface{}

	//
	// Decode unmarshals the raw payload into the provided typed destination.
	//
	Decode(v interface{}) error

	//
	// Candles provides the candles contained in the payload, or an error if the payload does not
	// hold candles.
	//
	Candles() ([]Candle, error)
}
