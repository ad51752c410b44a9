package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lukasz5660/Driver-checker/internal/config"
	"github.com/Lukasz5660/Driver-checker/internal/storage"
	"github.com/Lukasz5660/Driver-checker/pkg/soap"
	"github.com/Lukasz5660/Driver-checker/pkg/upki"
)

type recordingStore struct {
	records []*storage.LookupRecord
}

func (s *recordingStore) RecordLookup(ctx context.Context, record *storage.LookupRecord) error {
	s.records = append(s.records, record)
	return nil
}
func (s *recordingStore) Ping(ctx context.Context) error  { return nil }
func (s *recordingStore) Close(ctx context.Context) error { return nil }

func newTestServer(invoke InvokerFunc, store storage.Store) *Server {
	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, invoke, store, logger)
}

func doCheck(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

const validBody = `{"firstName":"Jan","lastName":"Kowalski","documentSeriesNumber":"ABC1234567"}`

func TestStatus(t *testing.T) {
	srv := newTestServer(func(ctx context.Context, req upki.Request) (upki.Result, error) {
		t.Fatal("status must not invoke a lookup")
		return nil, nil
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestCheckSuccess(t *testing.T) {
	var got upki.Request
	srv := newTestServer(func(ctx context.Context, req upki.Request) (upki.Result, error) {
		got = req
		return upki.Result{
			{Name: "statusKierowcy", Value: "AKTYWNY"},
			{Name: "czyWaznyDokument", Value: true},
		}, nil
	}, nil)

	rec := doCheck(t, srv, validBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, "Jan", got.FirstName)
	assert.Equal(t, "Kowalski", got.LastName)
	assert.Equal(t, "ABC1234567", got.DocumentSeriesNumber)

	// Field order of the result tree survives into the JSON.
	assert.JSONEq(t,
		`{"result":{"statusKierowcy":"AKTYWNY","czyWaznyDokument":true}}`,
		rec.Body.String())
	assert.True(t, strings.Index(rec.Body.String(), "statusKierowcy") <
		strings.Index(rec.Body.String(), "czyWaznyDokument"))
}

func TestCheckRejectsMalformedJSON(t *testing.T) {
	srv := newTestServer(func(ctx context.Context, req upki.Request) (upki.Result, error) {
		t.Fatal("malformed body must not reach the invoker")
		return nil, nil
	}, nil)

	rec := doCheck(t, srv, `{"firstName":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", &upki.ClientError{Kind: upki.KindInvalidInput, Message: "firstName must be provided"}, http.StatusBadRequest},
		{"configuration", &upki.ClientError{Kind: upki.KindConfiguration, Message: "invalid configuration: UPKI_WSDL_PATH"}, http.StatusInternalServerError},
		{"transport", &upki.ClientError{Kind: upki.KindTransport, Message: "failed to communicate with the UPKI service"}, http.StatusBadGateway},
		{"service fault", &upki.ClientError{Kind: upki.KindServiceFault, Message: "rejected"}, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(func(ctx context.Context, req upki.Request) (upki.Result, error) {
				return nil, tc.err
			}, nil)

			rec := doCheck(t, srv, validBody)
			require.Equal(t, tc.wantStatus, rec.Code)

			var payload map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestCheckServiceFaultCarriesCodeAndDetails(t *testing.T) {
	srv := newTestServer(func(ctx context.Context, req upki.Request) (upki.Result, error) {
		return nil, &upki.ClientError{
			Kind:      upki.KindServiceFault,
			Message:   "Nie znaleziono dokumentu",
			FaultCode: "soap:Client.NotFound",
			Details:   soap.Object{{Name: "kodBledu", Value: "404"}},
		}
	}, nil)

	rec := doCheck(t, srv, validBody)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{
		"error": "Nie znaleziono dokumentu",
		"faultCode": "soap:Client.NotFound",
		"details": {"kodBledu": "404"}
	}`, rec.Body.String())
}

func TestCheckAuditsOutcome(t *testing.T) {
	store := &recordingStore{}
	srv := newTestServer(func(ctx context.Context, req upki.Request) (upki.Result, error) {
		return upki.Result{}, nil
	}, store)

	rec := doCheck(t, srv, validBody)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, store.records, 1)
	record := store.records[0]
	assert.Equal(t, "success", record.Outcome)
	assert.Equal(t, storage.DigestDocument("ABC1234567"), record.DocumentDigest)
	assert.NotContains(t, record.DocumentDigest, "ABC1234567")
	assert.False(t, record.Timestamp.IsZero())
}

func TestCheckAuditsFaultCode(t *testing.T) {
	store := &recordingStore{}
	srv := newTestServer(func(ctx context.Context, req upki.Request) (upki.Result, error) {
		return nil, &upki.ClientError{
			Kind:      upki.KindServiceFault,
			Message:   "rejected",
			FaultCode: "soap:Client.NotFound",
		}
	}, store)

	doCheck(t, srv, validBody)

	require.Len(t, store.records, 1)
	assert.Equal(t, string(upki.KindServiceFault), store.records[0].Outcome)
	assert.Equal(t, "soap:Client.NotFound", store.records[0].FaultCode)
}

func TestCORSHeaders(t *testing.T) {
	cfg := config.Default()
	cfg.Server.CORSOrigin = "https://frontend.example"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(cfg, InvokerFunc(func(ctx context.Context, req upki.Request) (upki.Result, error) {
		return upki.Result{}, nil
	}), nil, logger)

	req := httptest.NewRequest(http.MethodOptions, "/api/check", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://frontend.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORSDefaultsToAnyOrigin(t *testing.T) {
	srv := newTestServer(func(ctx context.Context, req upki.Request) (upki.Result, error) {
		return upki.Result{}, nil
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
