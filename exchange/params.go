package exchange

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

//
// ErrInvalidParam is returned when a request parameter holds a value that cannot be represented
// as a single scalar on the wire.
//
var ErrInvalidParam = errors.New("invalid request parameter")

//
// Params holds the parameters of a single API call, keyed by their wire names. Values must be
// scalars: strings, booleans, integers, floats, decimals, times (sent as unix milliseconds), or
// anything implementing fmt.Stringer (e.g. Interval). Nil values are omitted from the wire.
//
type Params map[string]interface{}

//
// Clone returns a shallow copy of the parameters. A nil receiver yields an empty, non-nil copy.
//
func (o Params) Clone() Params {
	c := make(Params, len(o))
	for k, v := range o {
		c[k] = v
	}

	return c
}

func (o Params) Has(key string) bool {
	_, ok := o[key]
	return ok
}

//
// Keys returns the parameter names in canonical (sorted) order.
//
func (o Params) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

//
// Values converts the parameters into their wire representation.
//
func (o Params) Values() (url.Values, error) {
	v := make(url.Values, len(o))

	for key, raw := range o {
		if raw == nil {
			continue
		}

		s, err := FormatParam(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", key)
		}

		v.Set(key, s)
	}

	return v, nil
}

//
// Encode produces the canonical encoding of the parameters: URL-escaped "key=value" pairs sorted
// by key and joined with "&". The same parameters always produce the same string, which is what
// request signatures are computed over.
//
func (o Params) Encode() (string, error) {
	v, err := o.Values()
	if err != nil {
		return "", err
	}

	return v.Encode(), nil
}

//
// FormatParam renders a single scalar parameter value the way the exchange expects it.
//
func FormatParam(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case decimal.Decimal:
		return v.String(), nil
	case time.Time:
		return strconv.FormatInt(v.UnixNano()/int64(time.Millisecond), 10), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", errors.Wrapf(ErrInvalidParam, "unsupported value of type %T", raw)
	}
}
