package binance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

//
// RemoteAPIError implements the exchange.APIError interface for errors the exchange reported in a
// response payload.
//
type RemoteAPIError struct {
	method     string
	statusCode int
	code       int
	messages   []string
}

func (o *RemoteAPIError) Method() string {
	return o.method
}

//
// StatusCode returns the HTTP status the error payload arrived with.
//
func (o *RemoteAPIError) StatusCode() int {
	return o.statusCode
}

func (o *RemoteAPIError) Code() int {
	return o.code
}

func (o *RemoteAPIError) Messages() []string {
	out := make([]string, len(o.messages))
	copy(out, o.messages)

	return out
}

func (o *RemoteAPIError) Message() string {
	if len(o.messages) == 0 {
		return UnknownErrorMessage
	}

	return strings.Join(o.messages, ", ")
}

func (o *RemoteAPIError) Error() string {
	return fmt.Sprintf("the endpoint for %s returned an API error: %s", o.method, o.Message())
}

//
// normalize inspects a decoded payload for any of the error shapes the exchange produces and
// collapses them into a single *RemoteAPIError. It returns nil when the payload is a success.
//
// Recognized shapes:
//
//   {"error": ["E-1013", "Einvalid quantity"]}  ->  "1013, invalid quantity"
//   {"error": "Einvalid quantity"}              ->  "invalid quantity"
//   {"code": -1013, "msg": "Invalid quantity."} ->  "Invalid quantity."
//
// An error field that is present but holds nothing recognizable yields "unknown error" rather than
// a silent success, as does a non-2xx status whose payload carries no error at all.
//
func normalize(method string, statusCode int, value interface{}) error {
	if obj, ok := value.(map[string]interface{}); ok {
		if raw, present := obj["error"]; present {
			if apiErr := fromErrorField(raw); apiErr != nil {
				apiErr.method = method
				apiErr.statusCode = statusCode
				return apiErr
			}
		}

		if apiErr := fromCodeAndMsg(obj); apiErr != nil {
			apiErr.method = method
			apiErr.statusCode = statusCode
			return apiErr
		}
	}

	if statusCode != 0 && (statusCode < 200 || statusCode >= 300) {
		return &RemoteAPIError{method: method, statusCode: statusCode}
	}

	return nil
}

//
// fromErrorField handles the "error" member of a payload. Nil, empty strings, and empty arrays mean
// there was no error.
//
func fromErrorField(raw interface{}) *RemoteAPIError {
	var entries []interface{}

	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		entries = []interface{}{v}
	case []interface{}:
		if len(v) == 0 {
			return nil
		}
		entries = v
	default:
		return &RemoteAPIError{}
	}

	apiErr := &RemoteAPIError{}

	for _, entry := range entries {
		s, ok := entry.(string)
		if !ok || !strings.HasPrefix(s, ErrorPrefix) {
			continue
		}

		s = strings.TrimPrefix(s, ErrorPrefix)

		if apiErr.code == 0 {
			if code, err := strconv.Atoi(s); err == nil {
				apiErr.code = code
			}
		}

		if msg := strings.TrimPrefix(s, "-"); msg != "" {
			apiErr.messages = append(apiErr.messages, msg)
		}
	}

	return apiErr
}

//
// fromCodeAndMsg handles the native {"code": <negative>, "msg": "..."} shape.
//
func fromCodeAndMsg(obj map[string]interface{}) *RemoteAPIError {
	msg, ok := obj["msg"].(string)
	if !ok {
		return nil
	}

	var code int64
	switch v := obj["code"].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil
		}
		code = n
	case float64:
		code = int64(v)
	default:
		return nil
	}

	if code >= 0 {
		return nil
	}

	apiErr := &RemoteAPIError{code: int(code)}
	if msg != "" {
		apiErr.messages = []string{msg}
	}

	return apiErr
}
