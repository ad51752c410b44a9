/*
Package driverchecker is the backend for Driver Checker, a service that
verifies Polish driver-licence entitlements against the UPKI registry
(Uprawnienia Kierowców, part of the CEPiK system).

The backend accepts a plain JSON lookup over HTTP and forwards it as a
mutually authenticated, WS-Security signed SOAP call to the registry,
returning a normalized JSON result.

# Package Structure

	github.com/Lukasz5660/Driver-checker/pkg/upki      - Signed SOAP client for the UPKI registry
	github.com/Lukasz5660/Driver-checker/pkg/soap      - SOAP 1.1 envelopes, faults, dynamic result tree
	github.com/Lukasz5660/Driver-checker/pkg/wsse      - WS-Security XML signatures
	github.com/Lukasz5660/Driver-checker/pkg/wsdl      - Service description parsing
	github.com/Lukasz5660/Driver-checker/pkg/transport - Mutual-TLS HTTPS transport
	github.com/Lukasz5660/Driver-checker/internal/...  - HTTP front door, process config, audit trail

# Quick Start

Run the backend with the UPKI client configured from the environment:

	export UPKI_WSDL_PATH=/etc/upki/uprawnienia-kierowcow.przewoznicy.wsdl
	export UPKI_TLS_CERT_PEM=/etc/upki/client_tls_cert.pem
	export UPKI_TLS_KEY_PEM=/etc/upki/client_tls_key.pem
	export UPKI_WSSE_KEY_PEM=/etc/upki/wsse_key.pem
	export UPKI_WSSE_CERT_PEM=/etc/upki/wsse_cert.pem

	driver-checker --listen :5000

and query it:

	curl -X POST localhost:5000/api/check \
	    -H 'Content-Type: application/json' \
	    -d '{"firstName":"Jan","lastName":"Kowalski","documentSeriesNumber":"ABC123456"}'
*/
package driverchecker
