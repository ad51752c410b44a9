package soap

import (
	"strings"

	"github.com/beevik/etree"
)

// Fault is a parsed SOAP 1.1 fault.
type Fault struct {
	Code    string
	Message string
	Actor   string
	// Detail holds the structural serialization of the fault's detail
	// element, or its raw text when no structure is present. Nil when
	// the fault carried no detail at all.
	Detail Value
}

// FindFault returns the Fault element of the envelope's Body, or nil
// when the response is not a fault.
func FindFault(doc *etree.Document) *etree.Element {
	body, err := Body(doc)
	if err != nil {
		return nil
	}
	return body.FindElement("./*[local-name()='Fault']")
}

// ParseFault extracts code, message and detail from a Fault element.
// Detail serialization is best effort: the detail payload shape is not
// contractually guaranteed, so structured children are decoded into the
// result tree and anything else falls back to the element's text.
func ParseFault(el *etree.Element) *Fault {
	f := &Fault{}

	if code := el.FindElement("./*[local-name()='faultcode']"); code != nil {
		f.Code = strings.TrimSpace(code.Text())
	}
	if msg := el.FindElement("./*[local-name()='faultstring']"); msg != nil {
		f.Message = strings.TrimSpace(msg.Text())
	}
	if actor := el.FindElement("./*[local-name()='faultactor']"); actor != nil {
		f.Actor = strings.TrimSpace(actor.Text())
	}

	if detail := el.FindElement("./*[local-name()='detail']"); detail != nil {
		if len(detail.ChildElements()) > 0 {
			f.Detail = DecodeChildren(detail)
		} else if text := strings.TrimSpace(detail.Text()); text != "" {
			f.Detail = text
		}
	}

	return f
}
