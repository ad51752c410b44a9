package upki

import (
	"github.com/Lukasz5660/Driver-checker/pkg/soap"
)

// Names from the UPKI service contract. The Polish element names are
// the wire format defined by the registry and are mapped verbatim.
const (
	OperationName = "pytanieOUprawnienia"

	elementRequest        = "DaneDokumentuRequest"
	elementFirstName      = "imiePierwsze"
	elementLastName       = "nazwisko"
	elementDocumentNumber = "seriaNumerBlankietuDruku"
)

// Request is a driver-licence lookup query. All three fields are
// required and must be non-empty before any network activity begins.
type Request struct {
	FirstName            string
	LastName             string
	DocumentSeriesNumber string
}

func (r Request) validate() *ClientError {
	switch {
	case r.FirstName == "":
		return invalidInputError("firstName must be provided")
	case r.LastName == "":
		return invalidInputError("lastName must be provided")
	case r.DocumentSeriesNumber == "":
		return invalidInputError("documentSeriesNumber must be provided")
	}
	return nil
}

// Result is the deserialized success payload: an ordered tree
// reproducing the response structure losslessly.
type Result = soap.Object

// buildRequestEnvelope constructs the unsigned SOAP envelope for the
// lookup operation in the service's target namespace.
func buildRequestEnvelope(targetNamespace string, req Request) ([]byte, error) {
	doc, body := soap.NewEnvelope()

	op := body.CreateElement("ns1:" + OperationName)
	op.CreateAttr("xmlns:ns1", targetNamespace)

	wrapper := op.CreateElement(elementRequest)
	wrapper.CreateElement(elementFirstName).SetText(req.FirstName)
	wrapper.CreateElement(elementLastName).SetText(req.LastName)
	wrapper.CreateElement(elementDocumentNumber).SetText(req.DocumentSeriesNumber)

	return doc.WriteToBytes()
}
