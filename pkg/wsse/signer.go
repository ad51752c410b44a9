package wsse

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/leifj/signedxml"
)

// WS-Security and XML-DSig namespaces
const (
	NSSecurityExt  = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	NSSecurityUtil = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd"
	NSXMLDSig      = "http://www.w3.org/2000/09/xmldsig#"
	NSExcC14N      = "http://www.w3.org/2001/10/xml-exc-c14n#"

	// Algorithm URIs
	AlgorithmRSASHA256 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgorithmSHA256    = "http://www.w3.org/2001/04/xmlenc#sha256"

	// BinarySecurityToken encoding and value types
	EncodingBase64 = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-soap-message-security-1.0#Base64Binary"
	ValueTypeX509  = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-x509-token-profile-1.0#X509v3"
)

// Signer signs SOAP 1.1 envelopes with an RSA key and certificate.
type Signer struct {
	privateKey *rsa.PrivateKey
	cert       *x509.Certificate
}

// NewSigner creates a signer from an RSA key and its certificate.
func NewSigner(privateKey *rsa.PrivateKey, cert *x509.Certificate) (*Signer, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key is required")
	}
	if cert == nil {
		return nil, fmt.Errorf("certificate is required")
	}
	return &Signer{privateKey: privateKey, cert: cert}, nil
}

// Certificate returns the signing certificate.
func (s *Signer) Certificate() *x509.Certificate {
	return s.cert
}

// SignEnvelope signs the Body of a SOAP 1.1 envelope. The signature and
// the BinarySecurityToken carrying the signing certificate are placed in
// a wsse:Security header; the Body gains a wsu:Id the signature
// references. The output is compact XML: indentation would add
// whitespace text nodes and change the canonical form the signature
// covers.
func (s *Signer) SignEnvelope(envelopeXML []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(envelopeXML); err != nil {
		return nil, fmt.Errorf("parsing envelope: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("no root element found")
	}

	if root.SelectAttr("xmlns:wsu") == nil {
		root.CreateAttr("xmlns:wsu", NSSecurityUtil)
	}
	if root.SelectAttr("xmlns:wsse") == nil {
		root.CreateAttr("xmlns:wsse", NSSecurityExt)
	}

	header := root.FindElement("./*[local-name()='Header']")
	if header == nil {
		return nil, fmt.Errorf("SOAP Header not found")
	}
	body := root.FindElement("./*[local-name()='Body']")
	if body == nil {
		return nil, fmt.Errorf("SOAP Body not found")
	}

	security := header.FindElement("./*[local-name()='Security']")
	if security == nil {
		security = header.CreateElement("wsse:Security")
		security.CreateAttr("soapenv:mustUnderstand", "1")
	}

	bstID := "X509-" + uuid.NewString()
	bst := security.CreateElement("wsse:BinarySecurityToken")
	bst.CreateAttr("wsu:Id", bstID)
	bst.CreateAttr("EncodingType", EncodingBase64)
	bst.CreateAttr("ValueType", ValueTypeX509)
	bst.SetText(base64.StdEncoding.EncodeToString(s.cert.Raw))

	bodyID := ensureWSUId(body)

	sig, err := s.createSignature(body, bodyID)
	if err != nil {
		return nil, fmt.Errorf("creating signature: %w", err)
	}

	keyInfo := sig.CreateElement("ds:KeyInfo")
	secTokenRef := keyInfo.CreateElement("wsse:SecurityTokenReference")
	ref := secTokenRef.CreateElement("wsse:Reference")
	ref.CreateAttr("URI", "#"+bstID)
	ref.CreateAttr("ValueType", ValueTypeX509)

	security.AddChild(sig)

	return doc.WriteToBytes()
}

// createSignature builds the ds:Signature over the Body element using
// exclusive canonicalization and RSA-SHA256.
func (s *Signer) createSignature(body *etree.Element, bodyID string) (*etree.Element, error) {
	sig := etree.NewElement("ds:Signature")
	sig.CreateAttr("xmlns:ds", NSXMLDSig)

	signedInfo := sig.CreateElement("ds:SignedInfo")
	// Exclusive C14N requires the namespace declarations to be visible
	// on the element itself, not only on ancestors.
	signedInfo.CreateAttr("xmlns:ds", NSXMLDSig)
	signedInfo.CreateAttr("xmlns:soapenv", "http://schemas.xmlsoap.org/soap/envelope/")

	c14nMethod := signedInfo.CreateElement("ds:CanonicalizationMethod")
	c14nMethod.CreateAttr("Algorithm", NSExcC14N)
	c14nInclNS := c14nMethod.CreateElement("ec:InclusiveNamespaces")
	c14nInclNS.CreateAttr("xmlns:ec", NSExcC14N)
	c14nInclNS.CreateAttr("PrefixList", "soapenv")

	sigMethod := signedInfo.CreateElement("ds:SignatureMethod")
	sigMethod.CreateAttr("Algorithm", AlgorithmRSASHA256)

	canonicalizer := signedxml.ExclusiveCanonicalization{WithComments: false}
	canonical, err := canonicalizer.ProcessElement(body, "")
	if err != nil {
		return nil, fmt.Errorf("canonicalizing Body: %w", err)
	}
	digest := sha256.Sum256([]byte(canonical))

	ref := signedInfo.CreateElement("ds:Reference")
	ref.CreateAttr("URI", "#"+bodyID)
	transforms := ref.CreateElement("ds:Transforms")
	transform := transforms.CreateElement("ds:Transform")
	transform.CreateAttr("Algorithm", NSExcC14N)
	digestMethod := ref.CreateElement("ds:DigestMethod")
	digestMethod.CreateAttr("Algorithm", AlgorithmSHA256)
	digestValue := ref.CreateElement("ds:DigestValue")
	digestValue.SetText(base64.StdEncoding.EncodeToString(digest[:]))

	signedInfoCanonicalizer := signedxml.ExclusiveCanonicalization{WithComments: false}
	transformXML := `<ec:InclusiveNamespaces xmlns:ec="http://www.w3.org/2001/10/xml-exc-c14n#" PrefixList="soapenv"/>`
	canonicalSignedInfo, err := signedInfoCanonicalizer.ProcessElement(signedInfo, transformXML)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing SignedInfo: %w", err)
	}

	siDigest := sha256.Sum256([]byte(canonicalSignedInfo))
	signature, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, crypto.SHA256, siDigest[:])
	if err != nil {
		return nil, fmt.Errorf("signing: %w", err)
	}

	sigValue := sig.CreateElement("ds:SignatureValue")
	sigValue.SetText(base64.StdEncoding.EncodeToString(signature))

	return sig, nil
}

// ensureWSUId ensures an element has a wsu:Id attribute and returns it.
// The wsu namespace must be declared on the element itself for
// exclusive canonicalization.
func ensureWSUId(elem *etree.Element) string {
	if elem.SelectAttr("xmlns:wsu") == nil {
		elem.CreateAttr("xmlns:wsu", NSSecurityUtil)
	}

	for _, attr := range elem.Attr {
		if attr.Key == "Id" && attr.Space == "wsu" {
			return attr.Value
		}
	}

	id := "id-" + uuid.NewString()
	elem.CreateAttr("wsu:Id", id)
	return id
}
