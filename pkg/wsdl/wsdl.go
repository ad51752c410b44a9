package wsdl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// WSDL 1.1 namespaces
const (
	NSWSDL     = "http://schemas.xmlsoap.org/wsdl/"
	NSWSDLSOAP = "http://schemas.xmlsoap.org/wsdl/soap/"
)

// Fetcher retrieves remote service descriptions. Satisfied by
// transport.Client so that remote WSDL locations are fetched over the
// same mutually authenticated channel as the calls themselves.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Definitions is a parsed service description.
type Definitions struct {
	TargetNamespace string
	Bindings        []Binding
	// Addresses maps port names to the soap:address locations embedded
	// in the description. Informational only: the configured endpoint
	// always takes precedence over whatever the static description says.
	Addresses map[string]string
}

// Binding is a wsdl:binding with its operations in document order.
type Binding struct {
	Name       string
	PortType   string
	Operations []Operation
}

// Operation is a bound operation and its SOAPAction.
type Operation struct {
	Name       string
	SOAPAction string
}

// IsURI reports whether a service description location is a network URI
// rather than a local file path.
func IsURI(location string) bool {
	return strings.Contains(location, "://")
}

// Load reads and parses a service description from a local file or a
// remote URI. Remote locations require a fetcher.
func Load(ctx context.Context, location string, fetcher Fetcher) (*Definitions, error) {
	var data []byte
	var err error

	if IsURI(location) {
		if fetcher == nil {
			return nil, fmt.Errorf("remote service description %s requires a transport", location)
		}
		data, err = fetcher.Get(ctx, location)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("loading service description: %w", err)
	}

	return Parse(data)
}

// Parse parses a WSDL document in strict mode: a document that is not a
// well-formed wsdl:definitions is rejected outright.
func Parse(data []byte) (*Definitions, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing service description: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("service description is empty")
	}
	if root.Tag != "definitions" {
		return nil, fmt.Errorf("unexpected root element %q, want wsdl:definitions", root.Tag)
	}
	if ns := root.NamespaceURI(); ns != NSWSDL {
		return nil, fmt.Errorf("unexpected root namespace %q, want %q", ns, NSWSDL)
	}

	defs := &Definitions{
		TargetNamespace: root.SelectAttrValue("targetNamespace", ""),
		Addresses:       make(map[string]string),
	}
	if defs.TargetNamespace == "" {
		return nil, fmt.Errorf("service description has no targetNamespace")
	}

	for _, bindingEl := range root.FindElements("./*[local-name()='binding']") {
		binding, err := parseBinding(bindingEl)
		if err != nil {
			return nil, err
		}
		defs.Bindings = append(defs.Bindings, *binding)
	}

	for _, portEl := range root.FindElements("./*[local-name()='service']/*[local-name()='port']") {
		name := portEl.SelectAttrValue("name", "")
		if addr := portEl.FindElement("./*[local-name()='address']"); addr != nil {
			defs.Addresses[name] = addr.SelectAttrValue("location", "")
		}
	}

	return defs, nil
}

func parseBinding(el *etree.Element) (*Binding, error) {
	name := el.SelectAttrValue("name", "")
	if name == "" {
		return nil, fmt.Errorf("binding without a name attribute")
	}

	binding := &Binding{
		Name:     name,
		PortType: stripPrefix(el.SelectAttrValue("type", "")),
	}

	for _, opEl := range el.FindElements("./*[local-name()='operation']") {
		opName := opEl.SelectAttrValue("name", "")
		if opName == "" {
			return nil, fmt.Errorf("binding %s has an operation without a name", name)
		}
		op := Operation{Name: opName}
		if soapOp := opEl.FindElement("./*[local-name()='operation']"); soapOp != nil {
			op.SOAPAction = soapOp.SelectAttrValue("soapAction", "")
		}
		binding.Operations = append(binding.Operations, op)
	}

	return binding, nil
}

// FirstBinding resolves the binding the client will call through. A
// description without bindings is a configuration defect.
func (d *Definitions) FirstBinding() (*Binding, error) {
	if len(d.Bindings) == 0 {
		return nil, fmt.Errorf("service description defines no bindings")
	}
	return &d.Bindings[0], nil
}

// Operation looks up a bound operation by name.
func (b *Binding) Operation(name string) (*Operation, bool) {
	for i := range b.Operations {
		if b.Operations[i].Name == name {
			return &b.Operations[i], true
		}
	}
	return nil, false
}

func stripPrefix(qname string) string {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}
	return qname
}
