/*
Package transport implements the mutually authenticated HTTPS transport
for UPKI registry calls.

The client presents a TLS certificate on every handshake and validates
the registry's certificate against a configured trust anchor or, when
none is configured, the system trust store. TLS 1.2/1.3 are supported
with a recommended TLS 1.2 cipher suite list.

This is intentionally a thin, deterministic transport: no retries, no
resilience layer, no connection caching beyond what net/http does by
default. Connection establishment and response waiting are bounded by
two separate timeouts, mirroring the connect/read split of the service
contract.

# Client Usage

	client := transport.NewClient(&transport.Config{
	    Certificates:   []tls.Certificate{clientCert},
	    RootCAs:        certPool,
	    ConnectTimeout: 10 * time.Second,
	    ReadTimeout:    20 * time.Second,
	})

	resp, err := client.Post(ctx, endpoint, envelope, transport.ContentTypeTextXML, soapAction)

Non-2xx responses are returned to the caller rather than discarded:
SOAP faults ride HTTP 500 and must reach the fault parser.
*/
package transport
