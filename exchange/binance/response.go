package binance

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/lukehollenback/binanceapi/exchange"
)

//
// Response implements the exchange.Response interface for successful responses from the API.
//
type Response struct {
	method     string
	statusCode int
	body       []byte
	value      interface{}
}

//
// decodeResponse parses a raw payload into generic JSON values. Numbers are kept as json.Number so
// that prices and quantities do not lose precision.
//
func decodeResponse(method string, raw *RawResponse) (*Response, error) {
	o := &Response{
		method:     method,
		statusCode: raw.StatusCode,
		body:       raw.Body,
	}

	if len(bytes.TrimSpace(raw.Body)) == 0 {
		return o, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Body))
	dec.UseNumber()

	if err := dec.Decode(&o.value); err != nil {
		return nil, errors.Wrap(err, "failed to decode response body")
	}

	return o, nil
}

func (o *Response) Method() string {
	return o.method
}

func (o *Response) StatusCode() int {
	return o.statusCode
}

func (o *Response) Body() []byte {
	return o.body
}

func (o *Response) Value() interface{} {
	return o.value
}

func (o *Response) Decode(v interface{}) error {
	if len(bytes.TrimSpace(o.body)) == 0 {
		return errors.Errorf("the response to %s has an empty body", o.method)
	}

	return json.Unmarshal(o.body, v)
}

//
// Candles decodes the payload of a klines call.
//
func (o *Response) Candles() ([]exchange.Candle, error) {
	var candles []*Candle

	if err := o.Decode(&candles); err != nil {
		return nil, errors.Wrapf(err, "the response to %s does not hold candles", o.method)
	}

	ret := make([]exchange.Candle, len(candles))
	for i, v := range candles {
		ret[i] = v
	}

	return ret, nil
}
