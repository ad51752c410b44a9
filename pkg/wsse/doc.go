// Package wsse produces the WS-Security XML signature carried in UPKI
// request envelopes.
//
// Every outgoing SOAP Body is signed with RSA-SHA256 over its exclusive
// canonical form, and the signing certificate travels in a
// BinarySecurityToken referenced from the signature's KeyInfo. This
// signature authenticates the message content and is independent of the
// mutual TLS protecting the channel: TLS secures the transport, the
// WS-Security signature authenticates the message.
package wsse
