package upki

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/Lukasz5660/Driver-checker/pkg/soap"
	"github.com/Lukasz5660/Driver-checker/pkg/transport"
	"github.com/Lukasz5660/Driver-checker/pkg/wsdl"
	"github.com/Lukasz5660/Driver-checker/pkg/wsse"
)

// Client performs driver-licence lookups against the UPKI registry.
// A Client is cheap and request-scoped: build one per invocation from a
// validated Config and discard it afterwards.
type Client struct {
	cfg    Config
	logger *slog.Logger
}

// NewClient creates a client over the given configuration. A nil logger
// falls back to slog.Default().
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, logger: logger}
}

// Lookup resolves configuration from the process environment and runs a
// single invocation. Input validation happens before configuration is
// touched, so an invalid request performs no I/O at all.
func Lookup(ctx context.Context, logger *slog.Logger, req Request) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cerr := req.validate(); cerr != nil {
		return nil, cerr
	}

	cfg, err := LoadConfig(nil)
	if err != nil {
		logger.Error("configuration loading failed", "error", err)
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return nil, cfgErr.clientError()
		}
		return nil, configurationError("invalid configuration", err)
	}

	return NewClient(cfg, logger).Invoke(ctx, req)
}

// Invoke validates the request and configuration, builds the secure
// transport and signing client, calls the remote operation and returns
// the normalized result. Every failure comes back as a *ClientError.
func (c *Client) Invoke(ctx context.Context, req Request) (Result, error) {
	if cerr := req.validate(); cerr != nil {
		return nil, cerr
	}

	if err := c.cfg.Validate(); err != nil {
		c.logger.Error("configuration validation failed", "error", err)
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return nil, cfgErr.clientError()
		}
		return nil, configurationError("invalid configuration", err)
	}

	httpClient, cerr := c.buildTransport()
	if cerr != nil {
		return nil, cerr
	}

	defs, err := wsdl.Load(ctx, c.cfg.ServiceDescriptorLocation, httpClient)
	if err != nil {
		c.logger.Error("service description loading failed",
			"location", c.cfg.ServiceDescriptorLocation, "error", err)
		return nil, configurationError("the service description could not be loaded", err)
	}

	binding, err := defs.FirstBinding()
	if err != nil {
		c.logger.Error("binding resolution failed", "error", err)
		return nil, configurationError("the service description does not define any bindings", err)
	}

	operation, ok := binding.Operation(OperationName)
	if !ok {
		c.logger.Error("operation not found in binding",
			"binding", binding.Name, "operation", OperationName)
		return nil, configurationError("the service description does not define the lookup operation", nil)
	}

	signer, cerr := c.loadSigner()
	if cerr != nil {
		return nil, cerr
	}

	envelope, err := buildRequestEnvelope(defs.TargetNamespace, req)
	if err != nil {
		c.logger.Error("envelope construction failed", "error", err)
		return nil, configurationError("the request envelope could not be built", err)
	}

	signed, err := signer.SignEnvelope(envelope)
	if err != nil {
		c.logger.Error("envelope signing failed", "error", err)
		return nil, configurationError("the request could not be signed", err)
	}

	if c.cfg.DebugTrace {
		c.logger.Debug("sending signed request",
			"endpoint", c.cfg.EndpointURL,
			"soap_action", operation.SOAPAction,
			"envelope", string(signed))
	}

	resp, err := httpClient.Post(ctx, c.cfg.EndpointURL, signed, transport.ContentTypeTextXML, operation.SOAPAction)
	if err != nil {
		c.logger.Error("request failed", "endpoint", c.cfg.EndpointURL, "error", err)
		return nil, transportError("failed to communicate with the UPKI service", err)
	}

	if c.cfg.DebugTrace {
		c.logger.Debug("received response",
			"status", resp.StatusCode, "body", string(resp.Body))
	}

	return c.decodeResponse(resp)
}

// decodeResponse maps the three disjoint outcomes: a fault, a
// transport-level failure, or a successful payload.
func (c *Client) decodeResponse(resp *transport.Response) (Result, error) {
	doc, err := soap.ParseEnvelope(resp.Body)
	if err != nil {
		c.logger.Error("response parsing failed", "status", resp.StatusCode, "error", err)
		return nil, transportError("the UPKI service returned an unreadable response", err)
	}

	if faultEl := soap.FindFault(doc); faultEl != nil {
		fault := soap.ParseFault(faultEl)
		c.logger.Error("service returned a SOAP fault",
			"fault_code", fault.Code, "fault_message", fault.Message)
		return nil, serviceFaultError(fault)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected response status", "status", resp.StatusCode)
		return nil, transportError("the UPKI service returned an unexpected status", nil)
	}

	payload, err := soap.FirstBodyChild(doc)
	if err != nil {
		c.logger.Error("response body is empty", "error", err)
		return nil, transportError("the UPKI service returned an empty response", err)
	}

	return soap.DecodeChildren(payload), nil
}

// buildTransport assembles the mutually authenticated HTTPS client.
// Reading certificate or key files that validation saw a moment ago can
// still fail; that is a transport-class local I/O failure. Material
// that reads fine but does not parse is a configuration defect.
func (c *Client) buildTransport() (*transport.Client, *ClientError) {
	clientCert, err := tls.LoadX509KeyPair(c.cfg.TLSClientCertPath, c.cfg.TLSClientKeyPath)
	if err != nil {
		c.logger.Error("loading TLS client identity failed", "error", err)
		if isReadError(err) {
			return nil, transportError("failed to read the TLS client certificate or key", err)
		}
		return nil, configurationError("the TLS client certificate or key is invalid", err)
	}

	var rootCAs *x509.CertPool
	if c.cfg.TrustAnchorPath != "" {
		pemData, err := os.ReadFile(c.cfg.TrustAnchorPath)
		if err != nil {
			c.logger.Error("reading trust anchor failed", "error", err)
			return nil, transportError("failed to read the trust anchor bundle", err)
		}
		rootCAs = x509.NewCertPool()
		if !rootCAs.AppendCertsFromPEM(pemData) {
			c.logger.Error("trust anchor contains no certificates",
				"path", c.cfg.TrustAnchorPath)
			return nil, configurationError("the trust anchor bundle contains no certificates", nil)
		}
	}

	tpConfig := transport.DefaultConfig()
	tpConfig.Certificates = []tls.Certificate{clientCert}
	tpConfig.RootCAs = rootCAs
	tpConfig.ConnectTimeout = c.cfg.ConnectTimeout
	tpConfig.ReadTimeout = c.cfg.ReadTimeout

	return transport.NewClient(tpConfig), nil
}

// loadSigner loads the WS-Security signing key and certificate.
func (c *Client) loadSigner() (*wsse.Signer, *ClientError) {
	signer, err := wsse.LoadSigner(c.cfg.SigningKeyPath, c.cfg.SigningCertPath)
	if err != nil {
		c.logger.Error("loading signing material failed", "error", err)
		if isReadError(err) {
			return nil, transportError("failed to read the signing key or certificate", err)
		}
		return nil, configurationError("the signing key or certificate is invalid", err)
	}
	return signer, nil
}

func isReadError(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr)
}
