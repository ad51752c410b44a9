package wsdl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWSDL = `<?xml version="1.0" encoding="UTF-8"?>
<wsdl:definitions xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/"
    xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
    xmlns:tns="http://cepik.gov.pl/ul/uprawnienia-kierowcow"
    targetNamespace="http://cepik.gov.pl/ul/uprawnienia-kierowcow">
  <wsdl:portType name="UprawnieniaKierowcowPrzewoznicy">
    <wsdl:operation name="pytanieOUprawnienia">
      <wsdl:input message="tns:pytanieOUprawnieniaRequest"/>
      <wsdl:output message="tns:pytanieOUprawnieniaResponse"/>
    </wsdl:operation>
  </wsdl:portType>
  <wsdl:binding name="UprawnieniaKierowcowPrzewoznicyBinding" type="tns:UprawnieniaKierowcowPrzewoznicy">
    <soap:binding style="document" transport="http://schemas.xmlsoap.org/soap/http"/>
    <wsdl:operation name="pytanieOUprawnienia">
      <soap:operation soapAction="pytanieOUprawnienia"/>
      <wsdl:input><soap:body use="literal"/></wsdl:input>
      <wsdl:output><soap:body use="literal"/></wsdl:output>
    </wsdl:operation>
  </wsdl:binding>
  <wsdl:service name="UprawnieniaKierowcowPrzewoznicyService">
    <wsdl:port name="UprawnieniaKierowcowPrzewoznicyPort" binding="tns:UprawnieniaKierowcowPrzewoznicyBinding">
      <soap:address location="https://registry.example/cepik/api/ul"/>
    </wsdl:port>
  </wsdl:service>
</wsdl:definitions>`

func TestParseSampleDescription(t *testing.T) {
	defs, err := Parse([]byte(sampleWSDL))
	require.NoError(t, err)

	assert.Equal(t, "http://cepik.gov.pl/ul/uprawnienia-kierowcow", defs.TargetNamespace)
	require.Len(t, defs.Bindings, 1)

	binding, err := defs.FirstBinding()
	require.NoError(t, err)
	assert.Equal(t, "UprawnieniaKierowcowPrzewoznicyBinding", binding.Name)
	assert.Equal(t, "UprawnieniaKierowcowPrzewoznicy", binding.PortType)

	op, ok := binding.Operation("pytanieOUprawnienia")
	require.True(t, ok)
	assert.Equal(t, "pytanieOUprawnienia", op.SOAPAction)

	assert.Equal(t, "https://registry.example/cepik/api/ul",
		defs.Addresses["UprawnieniaKierowcowPrzewoznicyPort"])
}

func TestParseRejectsNonWSDLRoot(t *testing.T) {
	_, err := Parse([]byte(`<html/>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root element")
}

func TestParseRejectsWrongNamespace(t *testing.T) {
	_, err := Parse([]byte(`<definitions xmlns="http://example.com/not-wsdl" targetNamespace="x"/>`))
	require.Error(t, err)
}

func TestParseRejectsMissingTargetNamespace(t *testing.T) {
	_, err := Parse([]byte(`<wsdl:definitions xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/"/>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targetNamespace")
}

func TestParseRejectsMalformedXML(t *testing.T) {
	_, err := Parse([]byte(`<wsdl:definitions`))
	require.Error(t, err)
}

func TestFirstBindingWithoutBindings(t *testing.T) {
	defs, err := Parse([]byte(`<wsdl:definitions xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/" targetNamespace="urn:x"/>`))
	require.NoError(t, err)

	_, err = defs.FirstBinding()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no bindings")
}

func TestLoadFromLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.wsdl")
	require.NoError(t, os.WriteFile(path, []byte(sampleWSDL), 0o600))

	defs, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Len(t, defs.Bindings, 1)
}

func TestLoadMissingLocalFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.wsdl"), nil)
	require.Error(t, err)
}

func TestLoadRemoteWithoutFetcher(t *testing.T) {
	_, err := Load(context.Background(), "https://registry.example/service.wsdl", nil)
	require.Error(t, err)
}

func TestIsURI(t *testing.T) {
	assert.True(t, IsURI("https://registry.example/service.wsdl"))
	assert.True(t, IsURI("file:///tmp/service.wsdl"))
	assert.False(t, IsURI("/etc/upki/service.wsdl"))
	assert.False(t, IsURI(`C:\upki\service.wsdl`))
}
