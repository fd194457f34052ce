package exchange

import (
	"fmt"
	"net/http"
)

//
// HTTPError represents an error due to an unacceptable status code from an API endpoint. When
// dealing with cryptocurrency exchange APIs, such a response almost always means that something
// critically wrong has occurred upstream of the exchange's own request validation.
//
type HTTPError struct {
	statusCode int
	body       []byte
}

func NewHTTPError(statusCode int, body []byte) *HTTPError {
	return &HTTPError{
		statusCode: statusCode,
		body:       body,
	}
}

func (o *HTTPError) StatusCode() int {
	return o.statusCode
}

//
// Body returns whatever payload accompanied the status code. It may be empty.
//
func (o *HTTPError) Body() []byte {
	return o.body
}

func (o *HTTPError) Error() string {
	return fmt.Sprintf(
		"server responded with a %d (%s) status code",
		o.statusCode, http.StatusText(o.statusCode),
	)
}
