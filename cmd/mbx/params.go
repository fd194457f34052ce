package main

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/lukehollenback/binanceapi/exchange"
)

const intervalParam = "interval"

//
// parseParams turns "key=value" arguments into call parameters. Values are sent verbatim, except
// for the kline interval, which must name a known interval.
//
func parseParams(args []string) (exchange.Params, error) {
	params := make(exchange.Params, len(args))

	for _, arg := range args {
		i := strings.IndexByte(arg, '=')
		if i <= 0 {
			return nil, errors.Errorf("invalid parameter %q: expected key=value", arg)
		}

		key := arg[:i]
		if params.Has(key) {
			return nil, errors.Errorf("parameter %q given more than once", key)
		}

		value := arg[i+1:]

		if key == intervalParam {
			interval, err := exchange.ParseInterval(value)
			if err != nil {
				return nil, err
			}

			params[key] = interval
			continue
		}

		params[key] = value
	}

	return params, nil
}
