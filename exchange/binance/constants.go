package binance

const (
	APIKeyHeader    = "X-MBX-APIKEY"
	UserAgentHeader = "User-Agent"

	BaseURL     = "https://api.binance.com"
	PublicPath  = "/api/v1"
	PrivatePath = "/api/v3"

	NonceParam     = "nonce"
	OTPParam       = "otp"
	TimestampParam = "timestamp"
	SignatureParam = "signature"

	//
	// ErrorPrefix marks the entries of an "error" array that carry a real error (e.g. "E-1013" or
	// "Einvalid quantity"). Entries without it are warnings and are ignored.
	//
	ErrorPrefix = "E"

	UnknownErrorMessage = "unknown error"
)
