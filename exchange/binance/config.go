package binance

import (
	"net/url"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/lukehollenback/binanceapi/constants"
)

//
// EnvPrefix is the prefix of every environment variable LoadConfig reads (e.g. BINANCE_API_KEY).
//
const EnvPrefix = "BINANCE"

//
// Config holds everything a client needs to talk to the exchange. A client copies it at
// construction and never changes it afterwards; two clients never share configuration state.
//
type Config struct {
	APIKey    string `envconfig:"API_KEY" toml:"api_key"`
	APISecret string `envconfig:"API_SECRET" toml:"api_secret"`

	//
	// OTP, when set, is attached to every private request as the "otp" parameter.
	//
	OTP string `envconfig:"OTP" toml:"otp"`

	URL         string        `envconfig:"URL" default:"https://api.binance.com" toml:"url"`
	PublicPath  string        `envconfig:"PUBLIC_PATH" default:"/api/v1" toml:"public_path"`
	PrivatePath string        `envconfig:"PRIVATE_PATH" default:"/api/v3" toml:"private_path"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"10s" toml:"timeout"`
	UserAgent   string        `envconfig:"USER_AGENT" default:"binanceapi-go/1.0" toml:"user_agent"`

	//
	// UnsignedMethods lists the private methods that carry the API key but no signature. Nil means
	// DefaultUnsignedMethods; an empty list signs every private method.
	//
	UnsignedMethods []string `envconfig:"UNSIGNED_METHODS" default:"userDataStream" toml:"unsigned_methods"`

	//
	// RequestsPerMinute paces outgoing requests on the client side. Zero disables pacing.
	//
	RequestsPerMinute int `envconfig:"REQUESTS_PER_MINUTE" default:"0" toml:"requests_per_minute"`

	//
	// HistorySize bounds the number of calls kept for Recent. Zero disables the history.
	//
	HistorySize int `envconfig:"HISTORY_SIZE" default:"32" toml:"history_size"`
}

//
// DefaultConfig returns a fresh configuration with no credentials.
//
func DefaultConfig() Config {
	return Config{
		URL:             BaseURL,
		PublicPath:      PublicPath,
		PrivatePath:     PrivatePath,
		Timeout:         constants.DefaultTimeout,
		UserAgent:       constants.UserAgent,
		UnsignedMethods: DefaultUnsignedMethods(),
		HistorySize:     constants.DefaultHistorySize,
	}
}

//
// LoadConfig builds a configuration from defaults and BINANCE_* environment variables, then
// overlays the TOML file at path (if path is non-empty). Keys present in the file win.
//
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to read configuration from the environment")
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "failed to read configuration file %s", path)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

//
// Validate reports the first problem with the configuration, if any. Missing credentials are not a
// configuration problem: public methods work without them.
//
func (o Config) Validate() error {
	u, err := url.Parse(o.URL)
	if err != nil {
		return errors.Wrapf(err, "invalid base url %q", o.URL)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("invalid base url %q: scheme must be http or https", o.URL)
	}

	if u.Host == "" {
		return errors.Errorf("invalid base url %q: missing host", o.URL)
	}

	if o.Timeout <= 0 {
		return errors.Errorf("invalid timeout %s: must be positive", o.Timeout)
	}

	if o.RequestsPerMinute < 0 {
		return errors.Errorf("invalid requests per minute %d: must not be negative", o.RequestsPerMinute)
	}

	if o.HistorySize < 0 {
		return errors.Errorf("invalid history size %d: must not be negative", o.HistorySize)
	}

	for _, name := range o.UnsignedMethods {
		if _, ok := privateMethods[name]; !ok {
			return errors.Wrapf(ErrInvalidMethod, "unsigned method %q is not a private method", name)
		}
	}

	return nil
}

//
// clone copies the configuration so that later changes to the caller's slices are not observed.
//
func (o Config) clone() Config {
	c := o
	if o.UnsignedMethods != nil {
		c.UnsignedMethods = append([]string{}, o.UnsignedMethods...)
	}

	return c
}
