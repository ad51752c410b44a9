package upki

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Lukasz5660/Driver-checker/pkg/wsdl"
)

// Environment keys for the client configuration surface.
const (
	EnvServiceDescriptor = "UPKI_WSDL_PATH"
	EnvEndpointURL       = "UPKI_ENDPOINT_URL"
	EnvTLSClientCert     = "UPKI_TLS_CERT_PEM"
	EnvTLSClientKey      = "UPKI_TLS_KEY_PEM"
	EnvTrustAnchor       = "UPKI_CA_BUNDLE"
	EnvSigningKey        = "UPKI_WSSE_KEY_PEM"
	EnvSigningCert       = "UPKI_WSSE_CERT_PEM"
	EnvConnectTimeout    = "UPKI_CONNECT_TIMEOUT"
	EnvReadTimeout       = "UPKI_READ_TIMEOUT"
	EnvDebugTrace        = "UPKI_DEBUG"
)

// Defaults for the settings that have them. Security-material paths
// deliberately have no defaults: they must be configured explicitly.
const (
	DefaultEndpointURL = "https://185.41.93.94:6455/cepik/api/ul/UprawnieniaKierowcowPrzewoznicyService"

	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 20 * time.Second
)

// Config carries everything a single lookup needs. It is a plain value:
// construct one per invocation, pass it in, discard it. A Config
// returned by LoadConfig has already passed Validate.
type Config struct {
	// ServiceDescriptorLocation is a local path or HTTP(S) URI of the
	// WSDL describing the registry service.
	ServiceDescriptorLocation string

	// EndpointURL is where the operation is actually invoked. It takes
	// precedence over any address embedded in the service description.
	EndpointURL string

	// Client TLS identity presented during the handshake.
	TLSClientCertPath string
	TLSClientKeyPath  string

	// TrustAnchorPath is an optional CA bundle for validating the
	// registry's certificate. Empty means the system trust store.
	TrustAnchorPath string

	// WS-Security signing material, independent of the TLS identity.
	SigningKeyPath  string
	SigningCertPath string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// DebugTrace enables verbose protocol logging. Diagnostics only;
	// never alters behavior.
	DebugTrace bool
}

// LookupFunc resolves a configuration key, os.LookupEnv style.
type LookupFunc func(key string) (string, bool)

// LoadConfig resolves the client configuration from environment-style
// key/value lookup (nil means the process environment) and validates
// it. Resolution is purely declarative: defaults, float parsing and
// file existence checks, no network or signing work. All defects are
// reported together in a single *ConfigError.
func LoadConfig(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return fallback
	}

	cfg := Config{
		ServiceDescriptorLocation: get(EnvServiceDescriptor, ""),
		EndpointURL:               get(EnvEndpointURL, DefaultEndpointURL),
		TLSClientCertPath:         get(EnvTLSClientCert, ""),
		TLSClientKeyPath:          get(EnvTLSClientKey, ""),
		TrustAnchorPath:           get(EnvTrustAnchor, ""),
		SigningKeyPath:            get(EnvSigningKey, ""),
		SigningCertPath:           get(EnvSigningCert, ""),
	}

	cfgErr := &ConfigError{}

	cfg.ConnectTimeout = parseTimeout(get(EnvConnectTimeout, ""), DefaultConnectTimeout, EnvConnectTimeout, cfgErr)
	cfg.ReadTimeout = parseTimeout(get(EnvReadTimeout, ""), DefaultReadTimeout, EnvReadTimeout, cfgErr)

	switch get(EnvDebugTrace, "0") {
	case "1", "true", "True":
		cfg.DebugTrace = true
	}

	cfg.checkPaths(cfgErr)

	if len(cfgErr.Defects) > 0 {
		return Config{}, cfgErr
	}
	return cfg, nil
}

// Validate re-checks an explicitly constructed Config the same way
// LoadConfig does, reporting every defect at once.
func (c Config) Validate() error {
	cfgErr := &ConfigError{}
	if c.ConnectTimeout <= 0 {
		cfgErr.add(EnvConnectTimeout, "must be a positive duration")
	}
	if c.ReadTimeout <= 0 {
		cfgErr.add(EnvReadTimeout, "must be a positive duration")
	}
	c.checkPaths(cfgErr)
	if len(cfgErr.Defects) > 0 {
		return cfgErr
	}
	return nil
}

// checkPaths runs existence checks for every path-valued setting before
// returning, so the caller sees the complete configuration defect
// rather than the first one.
func (c Config) checkPaths(cfgErr *ConfigError) {
	required := []struct {
		setting string
		path    string
	}{
		{EnvServiceDescriptor, c.ServiceDescriptorLocation},
		{EnvTLSClientCert, c.TLSClientCertPath},
		{EnvTLSClientKey, c.TLSClientKeyPath},
		{EnvSigningKey, c.SigningKeyPath},
		{EnvSigningCert, c.SigningCertPath},
	}
	for _, s := range required {
		switch {
		case s.path == "":
			cfgErr.add(s.setting, "must be set")
		case !wsdl.IsURI(s.path) && !fileExists(s.path):
			cfgErr.add(s.setting, "file not found: "+s.path)
		}
	}

	if c.TrustAnchorPath != "" && !wsdl.IsURI(c.TrustAnchorPath) && !fileExists(c.TrustAnchorPath) {
		cfgErr.add(EnvTrustAnchor, "file not found: "+c.TrustAnchorPath)
	}

	if c.EndpointURL == "" {
		cfgErr.add(EnvEndpointURL, "must be set")
	}
}

// parseTimeout parses a float second count. An empty value uses the
// default; a non-numeric or non-positive value is a defect naming the
// offending key.
func parseTimeout(value string, fallback time.Duration, setting string, cfgErr *ConfigError) time.Duration {
	if value == "" {
		return fallback
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		cfgErr.add(setting, fmt.Sprintf("must be a numeric value, got %q", value))
		return fallback
	}
	if seconds <= 0 {
		cfgErr.add(setting, fmt.Sprintf("must be positive, got %q", value))
		return fallback
	}
	return time.Duration(seconds * float64(time.Second))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
