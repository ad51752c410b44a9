// Package soap implements the SOAP 1.1 plumbing for the UPKI client:
// envelope construction, fault detection and parsing, and a dynamic
// ordered result tree for payloads whose shape is defined by the remote
// service description rather than by this code.
package soap
