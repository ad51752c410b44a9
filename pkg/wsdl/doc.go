// Package wsdl parses WSDL 1.1 service descriptions.
//
// The parser is deliberately narrow: it extracts what a single-operation
// SOAP client needs, namely the target namespace, the bindings in
// document order, each binding's operations with their SOAPAction
// values, and the endpoint addresses advertised by the service ports.
// It is strict about
// the document itself (a malformed or empty description is a defect, not
// something to tolerate) but places no artificial size or depth limit on
// legitimately large descriptions.
package wsdl
