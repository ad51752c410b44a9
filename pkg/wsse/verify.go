package wsse

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/leifj/signedxml"
)

// VerifyEnvelope checks the WS-Security signature of a signed envelope
// against the certificate carried in its BinarySecurityToken: the Body
// digest is recomputed over the exclusive canonical form and the
// signature value is verified with the token's RSA public key.
func VerifyEnvelope(envelopeXML []byte) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(envelopeXML); err != nil {
		return fmt.Errorf("parsing envelope: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("no root element found")
	}

	security := root.FindElement(".//*[local-name()='Security']")
	if security == nil {
		return fmt.Errorf("no Security header found")
	}
	sig := security.FindElement("./*[local-name()='Signature']")
	if sig == nil {
		return fmt.Errorf("no Signature found")
	}

	cert, err := tokenCertificate(security)
	if err != nil {
		return err
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("token certificate does not carry an RSA key")
	}

	signedInfo := sig.FindElement("./*[local-name()='SignedInfo']")
	if signedInfo == nil {
		return fmt.Errorf("no SignedInfo found")
	}

	if err := verifyReferences(root, signedInfo); err != nil {
		return err
	}

	sigValueEl := sig.FindElement("./*[local-name()='SignatureValue']")
	if sigValueEl == nil {
		return fmt.Errorf("no SignatureValue found")
	}
	sigValue, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sigValueEl.Text()))
	if err != nil {
		return fmt.Errorf("decoding SignatureValue: %w", err)
	}

	canonicalizer := signedxml.ExclusiveCanonicalization{WithComments: false}
	transformXML := `<ec:InclusiveNamespaces xmlns:ec="http://www.w3.org/2001/10/xml-exc-c14n#" PrefixList="soapenv"/>`
	canonical, err := canonicalizer.ProcessElement(signedInfo, transformXML)
	if err != nil {
		return fmt.Errorf("canonicalizing SignedInfo: %w", err)
	}
	digest := sha256.Sum256([]byte(canonical))

	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sigValue); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}

func tokenCertificate(security *etree.Element) (*x509.Certificate, error) {
	bst := security.FindElement("./*[local-name()='BinarySecurityToken']")
	if bst == nil {
		return nil, fmt.Errorf("no BinarySecurityToken found")
	}
	der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(bst.Text()))
	if err != nil {
		return nil, fmt.Errorf("decoding BinarySecurityToken: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parsing token certificate: %w", err)
	}
	return cert, nil
}

func verifyReferences(root, signedInfo *etree.Element) error {
	refs := signedInfo.FindElements("./*[local-name()='Reference']")
	if len(refs) == 0 {
		return fmt.Errorf("no References found")
	}

	canonicalizer := signedxml.ExclusiveCanonicalization{WithComments: false}
	for _, ref := range refs {
		uri := strings.TrimPrefix(ref.SelectAttrValue("URI", ""), "#")
		target := findByWSUId(root, uri)
		if target == nil {
			return fmt.Errorf("referenced element %q not found", uri)
		}

		canonical, err := canonicalizer.ProcessElement(target, "")
		if err != nil {
			return fmt.Errorf("canonicalizing %q: %w", uri, err)
		}
		digest := sha256.Sum256([]byte(canonical))

		dv := ref.FindElement("./*[local-name()='DigestValue']")
		if dv == nil {
			return fmt.Errorf("reference %q has no DigestValue", uri)
		}
		expected, err := base64.StdEncoding.DecodeString(strings.TrimSpace(dv.Text()))
		if err != nil {
			return fmt.Errorf("decoding DigestValue for %q: %w", uri, err)
		}
		if string(digest[:]) != string(expected) {
			return fmt.Errorf("digest mismatch for %q", uri)
		}
	}
	return nil
}

func findByWSUId(root *etree.Element, id string) *etree.Element {
	if id == "" {
		return nil
	}
	for _, el := range root.FindElements(".//*") {
		for _, attr := range el.Attr {
			if attr.Key == "Id" && attr.Value == id {
				return el
			}
		}
	}
	return nil
}
