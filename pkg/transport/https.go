package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// TLS version constants
const (
	TLS12 = tls.VersionTLS12
	TLS13 = tls.VersionTLS13
)

// ContentTypeTextXML is the content type for SOAP 1.1 exchanges.
const ContentTypeTextXML = "text/xml; charset=utf-8"

// Recommended TLS 1.2 cipher suites
var RecommendedTLS12CipherSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
}

// Config contains the HTTPS client configuration.
type Config struct {
	MinTLSVersion uint16
	MaxTLSVersion uint16
	CipherSuites  []uint16

	// Certificates is the client identity presented during every TLS
	// handshake (mutual TLS).
	Certificates []tls.Certificate

	// RootCAs is the trust anchor for validating the server. Nil means
	// the system trust store.
	RootCAs *x509.CertPool

	// ConnectTimeout bounds TCP connection establishment and the TLS
	// handshake. ReadTimeout bounds waiting for the response once the
	// request has been written.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// DefaultConfig returns a default client configuration with no client
// identity. Callers performing mutual TLS must set Certificates.
func DefaultConfig() *Config {
	return &Config{
		MinTLSVersion:  TLS12,
		MaxTLSVersion:  TLS13,
		CipherSuites:   RecommendedTLS12CipherSuites,
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    20 * time.Second,
	}
}

// Response is the raw outcome of an exchange. Bodies of non-2xx
// responses are preserved so SOAP faults can be parsed by the caller.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client posts SOAP envelopes to a UPKI endpoint over mutual TLS.
type Client struct {
	client *http.Client
	config *Config
}

// NewClient creates a new HTTPS client from the given configuration.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	tlsConfig := &tls.Config{
		MinVersion:   config.MinTLSVersion,
		MaxVersion:   config.MaxTLSVersion,
		CipherSuites: config.CipherSuites,
		Certificates: config.Certificates,
		RootCAs:      config.RootCAs,
	}

	dialer := &net.Dialer{Timeout: config.ConnectTimeout}
	httpTransport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   config.ConnectTimeout,
		ResponseHeaderTimeout: config.ReadTimeout,
	}

	return &Client{
		client: &http.Client{
			Transport: httpTransport,
			Timeout:   config.ConnectTimeout + config.ReadTimeout,
		},
		config: config,
	}
}

// Post sends a SOAP envelope to the endpoint and returns the response,
// whatever its status code. The SOAPAction header carries the action
// resolved from the service description.
func (c *Client) Post(ctx context.Context, endpoint string, envelope []byte, contentType, soapAction string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "driver-checker/1.0")
	req.Header.Set("SOAPAction", fmt.Sprintf("%q", soapAction))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Get fetches a document, typically a remote service description.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
