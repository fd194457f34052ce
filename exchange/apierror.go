package exchange

//
// APIError generically provides an interface to objects that represent a first-class error provided
// in the body of a response from a cryptocurrency exchange's API. This is distinct from transport
// failures (see HTTPError), which mean the exchange never produced a meaningful answer at all.
//
type APIError interface {
	error

	//
	// Code returns the numeric error code provided by the API, or zero if there was none.
	//
	Code() int

	//
	// Message returns a single human-readable message assembled from everything the API reported.
	//
	Message() string

	//
	// Messages returns the individual messages the API reported, in the order they were received.
	//
	Messages() []string
}
