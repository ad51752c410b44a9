package soap

import (
	"fmt"

	"github.com/beevik/etree"
)

// SOAP 1.1 and schema-instance namespaces
const (
	NSEnvelope = "http://schemas.xmlsoap.org/soap/envelope/"
	NSXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	NSXSD      = "http://www.w3.org/2001/XMLSchema"
)

// NewEnvelope creates an empty SOAP 1.1 envelope with Header and Body.
// The returned document uses the "soapenv" prefix for the envelope
// namespace, which later signing steps rely on.
func NewEnvelope() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("soapenv:Envelope")
	env.CreateAttr("xmlns:soapenv", NSEnvelope)
	env.CreateElement("soapenv:Header")
	body := env.CreateElement("soapenv:Body")

	return doc, body
}

// ParseEnvelope parses raw XML and verifies it is a SOAP envelope.
func ParseEnvelope(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing envelope: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	if root.Tag != "Envelope" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}
	return doc, nil
}

// Body returns the Body element of a parsed envelope.
func Body(doc *etree.Document) (*etree.Element, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	body := root.FindElement("./*[local-name()='Body']")
	if body == nil {
		return nil, fmt.Errorf("SOAP Body not found")
	}
	return body, nil
}

// FirstBodyChild returns the first child element of the Body, which for
// a successful response is the operation's output element.
func FirstBodyChild(doc *etree.Document) (*etree.Element, error) {
	body, err := Body(doc)
	if err != nil {
		return nil, err
	}
	children := body.ChildElements()
	if len(children) == 0 {
		return nil, fmt.Errorf("SOAP Body is empty")
	}
	return children[0], nil
}
