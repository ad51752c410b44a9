package wsse

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvelope = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Header></soapenv:Header><soapenv:Body><ns1:DaneDokumentuRequest xmlns:ns1="urn:test"><ns1:imiePierwsze>Jan</ns1:imiePierwsze><ns1:nazwisko>Kowalski</ns1:nazwisko></ns1:DaneDokumentuRequest></soapenv:Body></soapenv:Envelope>`

func newTestSigner(t *testing.T) *Signer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test signer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	signer, err := NewSigner(key, cert)
	require.NoError(t, err)
	return signer
}

func TestNewSignerRequiresKeyAndCertificate(t *testing.T) {
	signer := newTestSigner(t)

	_, err := NewSigner(nil, signer.Certificate())
	assert.Error(t, err)

	_, err = NewSigner(signer.privateKey, nil)
	assert.Error(t, err)
}

func TestSignEnvelopeStructure(t *testing.T) {
	signer := newTestSigner(t)

	signed, err := signer.SignEnvelope([]byte(testEnvelope))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(signed))
	root := doc.Root()

	security := root.FindElement(".//*[local-name()='Security']")
	require.NotNil(t, security, "wsse:Security header missing")
	assert.Equal(t, "1", security.SelectAttrValue("soapenv:mustUnderstand", ""))

	bst := security.FindElement("./*[local-name()='BinarySecurityToken']")
	require.NotNil(t, bst)
	assert.Equal(t, EncodingBase64, bst.SelectAttrValue("EncodingType", ""))
	assert.Equal(t, ValueTypeX509, bst.SelectAttrValue("ValueType", ""))

	der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(bst.Text()))
	require.NoError(t, err)
	assert.Equal(t, signer.Certificate().Raw, der, "token must carry the signing certificate")

	body := root.FindElement("./*[local-name()='Body']")
	require.NotNil(t, body)
	bodyID := body.SelectAttrValue("wsu:Id", "")
	require.NotEmpty(t, bodyID, "Body must gain a wsu:Id")

	sig := security.FindElement("./*[local-name()='Signature']")
	require.NotNil(t, sig)

	ref := sig.FindElement("./*[local-name()='SignedInfo']/*[local-name()='Reference']")
	require.NotNil(t, ref)
	assert.Equal(t, "#"+bodyID, ref.SelectAttrValue("URI", ""))

	sigMethod := sig.FindElement("./*[local-name()='SignedInfo']/*[local-name()='SignatureMethod']")
	require.NotNil(t, sigMethod)
	assert.Equal(t, AlgorithmRSASHA256, sigMethod.SelectAttrValue("Algorithm", ""))

	sigValue := sig.FindElement("./*[local-name()='SignatureValue']")
	require.NotNil(t, sigValue)
	assert.NotEmpty(t, strings.TrimSpace(sigValue.Text()))

	tokenRef := sig.FindElement("./*[local-name()='KeyInfo']/*[local-name()='SecurityTokenReference']/*[local-name()='Reference']")
	require.NotNil(t, tokenRef)
	assert.True(t, strings.HasPrefix(tokenRef.SelectAttrValue("URI", ""), "#X509-"))
}

func TestSignEnvelopePreservesPayload(t *testing.T) {
	signer := newTestSigner(t)

	signed, err := signer.SignEnvelope([]byte(testEnvelope))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(signed))

	firstName := doc.FindElement("//*[local-name()='imiePierwsze']")
	require.NotNil(t, firstName)
	assert.Equal(t, "Jan", firstName.Text())
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	signer := newTestSigner(t)

	signed, err := signer.SignEnvelope([]byte(testEnvelope))
	require.NoError(t, err)

	require.NoError(t, VerifyEnvelope(signed))
}

func TestVerifyDetectsTamperedBody(t *testing.T) {
	signer := newTestSigner(t)

	signed, err := signer.SignEnvelope([]byte(testEnvelope))
	require.NoError(t, err)

	tampered := strings.Replace(string(signed), "Kowalski", "Nowak", 1)
	require.NotEqual(t, string(signed), tampered)

	err = VerifyEnvelope([]byte(tampered))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")
}

func TestVerifyRejectsUnsignedEnvelope(t *testing.T) {
	err := VerifyEnvelope([]byte(testEnvelope))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Security")
}

func TestSignEnvelopeRequiresHeader(t *testing.T) {
	signer := newTestSigner(t)

	noHeader := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body/></soapenv:Envelope>`
	_, err := signer.SignEnvelope([]byte(noHeader))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Header")
}

func TestSignEnvelopeRejectsMalformedXML(t *testing.T) {
	signer := newTestSigner(t)

	_, err := signer.SignEnvelope([]byte(`<soapenv:Envelope`))
	require.Error(t, err)
}
