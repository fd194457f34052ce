package constants

import (
	"time"
)

const (
	//
	// UserAgent identifies this client to the exchange on every request.
	//
	UserAgent = "binanceapi-go/1.0"

	//
	// DefaultTimeout bounds a single request against the exchange.
	//
	DefaultTimeout = 10 * time.Second

	//
	// MicrosPerMilli scales millisecond wall-clock readings up to the microsecond granularity used
	// for nonces.
	//
	MicrosPerMilli = 1000

	DefaultHistorySize = 32
)
