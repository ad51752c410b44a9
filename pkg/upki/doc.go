/*
Package upki implements the signed SOAP client for the UPKI
driver-licensing registry (Uprawnienia Kierowców).

A lookup is a single, request-scoped unit of work: configuration is
resolved and validated, a mutually authenticated transport and a
WS-Security signing client are built from scratch, the one remote
operation (pytanieOUprawnienia) is invoked with bounded timeouts, and
the result is returned as a dynamic ordered tree. Nothing is cached or
shared across invocations, so concurrent lookups are independent by
construction.

Every failure maps onto a small, stable taxonomy crossing the package
boundary as *ClientError:

  - KindInvalidInput: a required request field is missing; detected
    before any I/O.
  - KindConfiguration: missing or invalid security material, bad
    timeout values, or a malformed service description. A deployment
    defect.
  - KindServiceFault: the registry answered with a SOAP fault. Carries
    the fault code and a best-effort serialization of the detail
    payload. Faults can be semantically meaningful (for example "no
    record found") and are never retried here.
  - KindTransport: DNS, TCP, TLS, timeout or local I/O failure during
    the call.

Internal errors are logged with full context at the point of
translation and then replaced by the normalized form, so no vendor
error type or local file path crosses the boundary.
*/
package upki
